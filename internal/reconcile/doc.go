// Package reconcile maps search index highlights back onto stored page text.
//
// The search index and the page store tokenize differently and the index does
// not report page offsets. A highlighted snippet therefore only tells us the
// matched keyword and the character right before and after it. Reconciliation
// runs in three steps:
//
//  1. KeywordSet extracts candidate hits from snippets, merging keywords that
//     the index split across adjacent highlight tags.
//  2. Locate / Occurrences find each candidate in a page's Text, using the
//     context characters as word delimiters.
//  3. Match and Collect link every located hit to the overlapping annotations
//     of the requested granularity and build the search result.
//
// All offsets are character offsets into the page text.
package reconcile
