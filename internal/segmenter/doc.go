// Package segmenter derives word, line, block and page annotations from
// plain page text.
//
// Imported records normally carry annotations produced by OCR layout
// analysis. Plain text pages have none, so the segmenter builds them from
// whitespace alone:
//
//	seg := segmenter.New()
//	annos := seg.Segment("1", "Hi there.\nGood day.\n\nNext block")
//
//	// 1.p1 [0,31)  page
//	// 1.b1 [0,19)  "Hi there.\nGood day."
//	// 1.b2 [21,31) "Next block"
//	// 1.l1 [0,9)   "Hi there."
//	// ...
//	// 1.w1 [0,2)   "Hi"
//
// Offsets count characters, not bytes. Lines and blocks are trimmed of
// surrounding whitespace. A page without any non-space character gets no
// annotations at all.
package segmenter
