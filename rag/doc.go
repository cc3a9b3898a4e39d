// Package rag generates grounded answers to questions about filings.
//
// The Engine retrieves relevant chunks through the search package, turns
// them into cited passages, and asks the configured answerer to respond.
// Both blocking and streaming generation are supported.
package rag
