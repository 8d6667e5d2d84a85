package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate reports a unique constraint violation.
var ErrDuplicate = errors.New("duplicate record")

// ErrForeignKey reports a write referencing a missing row.
var ErrForeignKey = errors.New("referenced record does not exist")

func translatePQ(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505":
		return ErrDuplicate
	case "23503":
		return ErrForeignKey
	}
	return err
}
