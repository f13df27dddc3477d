package workers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gradebot/catalog"
	"gradebot/metrics"
	"gradebot/models"
	"gradebot/tools"

	"github.com/sirupsen/logrus"
)

// EmptyAnswer replaces a blank submission so neither the model nor the audit
// trail ever sees an empty answer.
const EmptyAnswer = "empty answer"

// answerPadding is appended to every non-empty submission.
const answerPadding = "\n               "

/************************************************
/**** MARK: RESULT STATUS ****/
/************************************************/
const STATUS_OK = "ok"
const STATUS_LOOKUP_ERROR = "lookup_error"
const STATUS_PROVIDER_ERROR = "provider_error"

// ErrorLabel is the short label shown next to an error message.
const ErrorLabel = "Error"

// Generator turns a composed payload into feedback text.
type Generator interface {
	Generate(ctx context.Context, p tools.Payload) (string, error)
}

// Recorder appends an audit event; it never fails from the caller's view.
type Recorder interface {
	Record(ev models.ActivityLog)
}

// Request is one student submission.
type Request struct {
	Assignment string `json:"assignment" form:"assignment"`
	Answer     string `json:"answer" form:"answer"`
	Session    string `json:"session" form:"session"`
}

// Result is what the caller gets back. Status tells feedback apart from the
// two failure cases; Label and Message are only set on failure.
type Result struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
	Label    string `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (r Result) OK() bool {
	return r.Status == STATUS_OK
}

// Grader runs one grading request end to end: lookup, prompt, model call and
// the audit events around it. It holds no per-request state.
type Grader struct {
	catalog   *catalog.Catalog
	composer  *tools.Composer
	generator Generator
	recorder  Recorder
	log       logrus.FieldLogger
}

func NewGrader(c *catalog.Catalog, composer *tools.Composer, g Generator, r Recorder, log logrus.FieldLogger) *Grader {
	return &Grader{catalog: c, composer: composer, generator: g, recorder: r, log: log}
}

// Assignments is the number of identifiers the grader can resolve.
func (g *Grader) Assignments() int {
	return g.catalog.Len()
}

// NormalizeAnswer applies the submission rules: blank becomes EmptyAnswer,
// anything else gets the trailing padding.
func NormalizeAnswer(answer string) string {
	if answer == "" {
		return EmptyAnswer
	}
	return answer + answerPadding
}

// Grade never returns an error: every outcome is described by Result.
func (g *Grader) Grade(ctx context.Context, req Request) Result {
	key := strings.ToLower(req.Assignment)
	log := g.log.WithFields(logrus.Fields{"session": req.Session, "assignment": key})

	rec, ok := g.catalog.Lookup(key)
	if !ok {
		msg := fmt.Sprintf("Assignment '%s' not found", req.Assignment)
		g.recorder.Record(models.ActivityLog{
			SessionID:  req.Session,
			Assignment: key,
			Action:     models.ACTION_ASSIGNMENT_LOOKUP_ERROR,
			Detail:     msg,
		})
		metrics.RecordGrading(STATUS_LOOKUP_ERROR)
		log.Info("grader: unknown assignment")
		return Result{Status: STATUS_LOOKUP_ERROR, Label: ErrorLabel, Message: msg}
	}

	answer := NormalizeAnswer(req.Answer)
	payload := g.composer.Compose(rec, answer)

	g.recorder.Record(models.ActivityLog{
		SessionID:  req.Session,
		Assignment: key,
		Action:     models.ACTION_ANSWER,
		Detail:     answer,
	})

	result := Result{Status: STATUS_OK}
	text, err := g.generator.Generate(ctx, payload)
	if err != nil {
		result = Result{Status: STATUS_PROVIDER_ERROR, Label: ErrorLabel, Message: unavailableMessage(err)}
		text = result.Message
		log.WithError(err).Warn("grader: feedback unavailable")
	} else {
		result.Feedback = text
	}

	g.recorder.Record(models.ActivityLog{
		SessionID:  req.Session,
		Assignment: key,
		Action:     models.ACTION_FEEDBACK,
		Detail:     text,
	})
	metrics.RecordGrading(result.Status)
	return result
}

func unavailableMessage(err error) string {
	kind := tools.PROVIDER_TRANSPORT
	var perr *tools.ProviderError
	if errors.As(err, &perr) {
		kind = perr.Kind
	}
	return fmt.Sprintf("Feedback is unavailable right now (%s). Please try again later.", kind)
}
