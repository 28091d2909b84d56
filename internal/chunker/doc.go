// Package chunker splits source file text into overlapping fixed-size
// character windows for embedding.
//
// The algorithm is a plain sliding window over character offsets: it is
// not token- or line-aware, a deliberate trade of boundary awareness for
// simplicity. With window W and overlap O, chunk starts advance by W-O,
// so consecutive chunks share O characters and the whole text is covered
// without gaps. Text shorter than one window yields a single chunk;
// empty text yields none.
package chunker
