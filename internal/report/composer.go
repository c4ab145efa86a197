package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/llm"
	"invest-dashboard/internal/logger"
)

// Stream status messages.
const (
	StatusCollecting = "시장 데이터 수집 중..."
	StatusIndicators = "기술적 지표 분석 중..."
	StatusNarrating  = "AI 분석 시작..."
	StatusFallback   = "기본 분석 생성 중..."
)

// DoneFrame terminates every stream.
const DoneFrame = "data: [DONE]\n\n"

// DataFrame wraps one text fragment as an SSE frame. Newlines are escaped so
// a fragment never splits the frame.
func DataFrame(s string) string {
	return "data: " + strings.ReplaceAll(s, "\n", `\n`) + "\n\n"
}

func StatusFrame(msg string) string { return DataFrame("[STATUS] " + msg) }

func ErrorFrame(msg string) string { return DataFrame("[ERROR] " + msg) }

// FrameWriter delivers one SSE frame to the client. An error means the
// client is gone and the stream stops.
type FrameWriter func(frame string) error

// Composer produces reports, through the narrator when it answers and the
// templated path otherwise.
type Composer struct {
	narrator interfaces.Narrator
	now      func() time.Time
}

// NewComposer returns a composer. A nil narrator always uses the fallback.
func NewComposer(narrator interfaces.Narrator) *Composer {
	return &Composer{narrator: narrator, now: time.Now}
}

// Compose never fails: narrator or parse errors degrade to Fallback.
func (c *Composer) Compose(ctx context.Context, in Input) Report {
	if c.narrator == nil {
		return Fallback(in, c.now())
	}

	text, err := c.narrator.Complete(ctx, SystemPrompt, BuildPrompt(in))
	if err != nil {
		c.logDegraded(ctx, "Narrator failed, using templated report", err)
		return Fallback(in, c.now())
	}

	r, err := ParseResponse(text, in.Summary, c.now())
	if err != nil {
		logger.Warn(ctx, "Narrator reply unparseable, using templated report",
			"error", err.Error(),
			"reply_chars", len(text),
		)
		return Fallback(in, c.now())
	}
	return r
}

// Stream writes the narration frames and always finishes with DoneFrame
// unless the client went away. A narrator that fails before its first chunk
// is replaced by the templated report rendered as markdown; a failure after
// that is reported with ErrorFrame.
func (c *Composer) Stream(ctx context.Context, in Input, w FrameWriter) error {
	if c.narrator != nil {
		if err := w(StatusFrame(StatusNarrating)); err != nil {
			return err
		}

		sent := 0
		var writeErr error
		err := c.narrator.Stream(ctx, StreamingSystemPrompt, BuildStreamingPrompt(in), func(chunk string) error {
			if werr := w(DataFrame(chunk)); werr != nil {
				writeErr = werr
				return werr
			}
			sent++
			return nil
		})
		switch {
		case writeErr != nil:
			return writeErr
		case err == nil:
			return w(DoneFrame)
		case sent > 0:
			logger.ErrorWithErr(ctx, "Narrator stream broke off", err, "chunks", sent)
			if werr := w(ErrorFrame(err.Error())); werr != nil {
				return werr
			}
			return w(DoneFrame)
		}
		c.logDegraded(ctx, "Narrator stream unavailable, streaming templated report", err)
	}

	if err := w(StatusFrame(StatusFallback)); err != nil {
		return err
	}
	for _, line := range strings.SplitAfter(Markdown(Fallback(in, c.now())), "\n") {
		if line == "" {
			continue
		}
		if err := w(DataFrame(line)); err != nil {
			return err
		}
	}
	return w(DoneFrame)
}

func (c *Composer) logDegraded(ctx context.Context, msg string, err error) {
	if errors.Is(err, llm.ErrUnavailable) {
		logger.Debug(ctx, msg, "reason", err.Error())
		return
	}
	logger.Warn(ctx, msg, "error", err.Error())
}
