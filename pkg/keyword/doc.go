// Package keyword holds the keyword batch model and the adapter that turns
// loosely typed Keyword Planner rows into strict records.
package keyword
