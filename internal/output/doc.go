// Package output renders the results of a run: the start banner, the text
// report with its status-code and error tables, the JSON report, and the live
// progress line.
package output
