package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// ErrDuplicateVersion is returned by VersionRepository.Add when the
// (document_id, version_number) unique constraint rejects the row. It is the
// persistence-level backstop for concurrent appends; the service layer
// retries once before surfacing the conflict.
var ErrDuplicateVersion = errors.New("duplicate version number for document")
