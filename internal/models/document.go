package models

import (
	"time"
)

// ProcessingStatus tracks a document through the parse pipeline.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusUploaded   ProcessingStatus = "uploaded"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status only changes again on a new parse request.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document is one uploaded file plus everything the pipeline produced from it.
// RawText, Markdown and ExtractedFields are written only by the orchestrator.
// Markdown holds real content only; failures land in Error/ErrorKind.
type Document struct {
	ID              string           `json:"id"`
	Filename        string           `json:"filename"`
	FileSize        int64            `json:"file_size"`
	FileType        string           `json:"file_type"`
	RawText         string           `json:"raw_text,omitempty"`
	Markdown        string           `json:"markdown,omitempty"`
	ExtractedFields string           `json:"extracted_fields,omitempty"`
	Status          ProcessingStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	ErrorKind       ErrorKind        `json:"error_kind,omitempty"`
	UploadedAt      time.Time        `json:"uploaded_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
