// Copyright 2025 Jotted Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateTitle trims the title and validates it against domain rules.
// Returns the trimmed title.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyTitle)
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLen {
		return "", fmt.Errorf("%w: %w (max %d)", ErrInvalidNote, ErrTitleTooLong, TitleMaxLen)
	}
	return trimmed, nil
}

// ValidateBody trims the body and validates it against domain rules.
// Returns the trimmed body.
func ValidateBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidNote, ErrEmptyBody)
	}
	if utf8.RuneCountInString(trimmed) > BodyMaxLen {
		return "", fmt.Errorf("%w: %w (max %d)", ErrInvalidNote, ErrBodyTooLong, BodyMaxLen)
	}
	return trimmed, nil
}

// ValidateNote validates a note according to domain rules.
//
// Validation rules:
//   - Title must be non-empty after trimming and at most TitleMaxLen
//   - Body must be non-empty after trimming and at most BodyMaxLen
//   - Tags must not contain empty or whitespace-only entries
//   - UpdatedAt must not precede CreatedAt
//
// NOT validated (populated elsewhere):
//   - Embedding (optional; set only when an embedding provider is configured)
//   - ID (assigned on create)
func ValidateNote(note *Note) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}

	if _, err := ValidateTitle(note.Title); err != nil {
		return err
	}
	if _, err := ValidateBody(note.Body); err != nil {
		return err
	}

	for _, tag := range note.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: tags cannot contain empty entries", ErrInvalidNote)
		}
	}

	if !note.UpdatedAt.IsZero() && note.UpdatedAt.Before(note.CreatedAt) {
		return fmt.Errorf("%w: updatedAt precedes createdAt", ErrInvalidNote)
	}

	return nil
}

// ValidateUpdate validates a partial update, trimming title and body in place.
func ValidateUpdate(update *NoteUpdate) error {
	if update == nil {
		return fmt.Errorf("%w: update is nil", ErrInvalidNote)
	}

	if update.Title != nil {
		trimmed, err := ValidateTitle(*update.Title)
		if err != nil {
			return err
		}
		*update.Title = trimmed
	}
	if update.Body != nil {
		trimmed, err := ValidateBody(*update.Body)
		if err != nil {
			return err
		}
		*update.Body = trimmed
	}
	if update.Tags != nil {
		*update.Tags = NormalizeTags(*update.Tags)
	}

	return nil
}
