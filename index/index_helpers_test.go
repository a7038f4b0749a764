package index_test

import (
	roaring "github.com/RoaringBitmap/roaring/v2"
)

func allOf(positions ...uint32) *roaring.Bitmap {
	return roaring.BitmapOf(positions...)
}
