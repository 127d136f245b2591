package logging_test

import (
	"errors"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	logger.NoOpLogger
	msgs   []string
	fields [][]logger.Field
}

func (r *recordingLogger) Info(msg string, fields ...logger.Field) {
	r.msgs = append(r.msgs, msg)
	r.fields = append(r.fields, fields)
}

func (r *recordingLogger) Warn(msg string, fields ...logger.Field) {
	r.Info(msg, fields...)
}

func TestAdapter_ConvertsPairs(t *testing.T) {
	t.Parallel()

	rec := &recordingLogger{}
	a := logging.NewAdapter(rec)

	a.Info("batch done", "files", 2, 42, "ignored", "dangling")
	a.Warn("file failed", "error", errors.New("boom"))

	assert.Equal(t, []string{"batch done", "file failed"}, rec.msgs)
	assert.Len(t, rec.fields[0], 1)
	assert.Equal(t, "files", rec.fields[0][0].Key)
	assert.Equal(t, "boom", rec.fields[1][0].String)
}
