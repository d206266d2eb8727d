// Package ngramlm wraps the statistical language-model estimator (ngram-count
// compatible flags) that turns the normalized transcripts into an ARPA model.
package ngramlm
