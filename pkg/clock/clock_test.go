package clock

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemTimeStringFormat(t *testing.T) {
	s := System{}
	assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`), s.TimeString())
}

func TestSystemMinutesSinceMidnightRange(t *testing.T) {
	s := System{}
	m := s.MinutesSinceMidnight()
	assert.GreaterOrEqual(t, m, 0)
	assert.Less(t, m, 24*60)
}
