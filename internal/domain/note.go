package domain

import (
	"github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/normalize"
)

// MaxNoteLength is the longest note accepted, in characters.
const MaxNoteLength = 255

// Note is a short free-text annotation on a Book.
type Note struct {
	Syncable
	BookID  string `json:"book_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// NewNote validates content and builds a note attached to book.
func NewNote(id string, book *Book, content string) (*Note, error) {
	content, err := validateNoteContent(content)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.FieldValidation("bookId", "book is required")
	}

	n := &Note{
		Syncable: Syncable{ID: id},
		BookID:   book.ID,
		UserID:   book.UserID,
		Content:  content,
	}
	n.InitTimestamps()
	return n, nil
}

// UpdateContent replaces the note's content.
func (n *Note) UpdateContent(content string) error {
	content, err := validateNoteContent(content)
	if err != nil {
		return err
	}
	n.Content = content
	n.Touch()
	return nil
}

func validateNoteContent(content string) (string, error) {
	content = normalize.Text(content)
	if content == "" {
		return "", errors.FieldValidation("content", "content is required")
	}
	if normalize.Length(content) > MaxNoteLength {
		return "", errors.FieldValidation("content", "content must be at most 255 characters")
	}
	return content, nil
}
