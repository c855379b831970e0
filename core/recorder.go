package core

import (
	"io"
	"sync"
	"time"

	"github.com/pocketsh/pocketsh/core/ttylog"
)

// Recorder captures the interpreter's terminal conversation (prompts,
// typed lines, notices and builtin output) as timestamped events.
// External commands write to the terminal directly, so their output is
// not captured; the recording is a transcript of the shell itself.
type Recorder struct {
	mu   sync.Mutex
	sink ttylog.LogSink
	now  func() time.Time
}

// NewRecorder creates a Recorder feeding sink, typically an asciicast
// sink over a file.
func NewRecorder(sink ttylog.LogSink) *Recorder {
	return &Recorder{
		sink: sink,
		now:  time.Now,
	}
}

func (r *Recorder) record(fd ttylog.FD, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Recording problems must never break the session itself.
	_ = r.sink(&ttylog.Event{
		TimestampMicros: r.now().UnixNano() / int64(time.Microsecond),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	})
}

// Output wraps w so everything written through it is also recorded.
func (r *Recorder) Output(w io.Writer) io.Writer {
	return &recordingWriter{r: r, inner: w}
}

// Input wraps rd so everything read through it is also recorded.
func (r *Recorder) Input(rd io.Reader) io.Reader {
	return &recordingReader{r: r, inner: rd}
}

type recordingWriter struct {
	r     *Recorder
	inner io.Writer
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if n > 0 {
		w.r.record(ttylog.FDStdout, p[:n])
	}
	return n, err
}

type recordingReader struct {
	r     *Recorder
	inner io.Reader
}

func (rd *recordingReader) Read(p []byte) (int, error) {
	n, err := rd.inner.Read(p)
	if n > 0 {
		rd.r.record(ttylog.FDStdin, p[:n])
	}
	return n, err
}
