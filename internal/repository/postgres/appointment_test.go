package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	serialization := &pq.Error{Code: pqSerializationFailure, Message: "could not serialize access"}

	assert.True(t, isSerializationFailure(serialization))
	assert.True(t, isSerializationFailure(fmt.Errorf("commit: %w", serialization)))

	assert.False(t, isSerializationFailure(&pq.Error{Code: pqUniqueViolation}))
	assert.False(t, isSerializationFailure(errors.New("connection reset")))
	assert.False(t, isSerializationFailure(nil))
}
