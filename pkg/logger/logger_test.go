package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrefix(t *testing.T) {
	t.Parallel()

	l := New("cron")
	assert.Equal(t, "[cron] ", l.Prefix())
}
