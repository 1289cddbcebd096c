package logger

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	keyTimestamp = "timestamp"
	keyLevel     = "level"
	keyType      = "type"
	keySession   = "session_id"
	keyEvent     = "event"
)

// Logger captures interpreter events so usage and failures can be reviewed
// after the fact.
type Logger struct {
	z *zap.Logger
}

// NewJSONLinesLogger creates a Logger that exports events at or above level
// in newline delimited JSON object format.
func NewJSONLinesLogger(w io.Writer, level zapcore.Level) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        keyTimestamp,
		LevelKey:       keyLevel,
		MessageKey:     keyType,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), level)
	return &Logger{z: zap.New(core)}
}

// Nop returns a Logger that discards every event.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Sync flushes buffered events.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// NewSession creates a logger with an attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	id := uuid.NewString()
	return &SessionLogger{
		z:         l.z.With(zap.String(keySession, id)),
		sessionID: id,
	}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	z         *zap.Logger
	sessionID string
}

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record writes the event if its level is enabled.
func (l *SessionLogger) Record(event Event) {
	if ce := l.z.Check(event.Level(), event.Type()); ce != nil {
		ce.Write(zap.Object(keyEvent, event))
	}
}
