// Package logger adapts common third-party logging libraries to
// bptree.Logger.
package logger
