// Package sift crawls websites of unknown size and makes the extracted text
// searchable through a hybrid semantic/keyword index.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, badger/, trafilatura/),
// while crawl/ and search/ hold the two engines that orchestrate them.
package sift
