// Command timelinekit validates, repairs and reformats timeline interchange
// documents and keeps a catalog of canonical serializations for golden-file
// comparison.
package main
