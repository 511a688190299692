package raster

import "fmt"

// NodeKey is the cache key of a node bitmap: its style word and label hash.
func NodeKey(style uint32, labelHash uint64) string {
	return fmt.Sprintf("n:%08x:%016x", style, labelHash)
}

// TextKey is the cache key of a free-standing text label.
func TextKey(label string) string {
	return "t:" + label
}
