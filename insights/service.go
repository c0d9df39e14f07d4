package insights

import (
	"context"
	"encoding/base64"
	"errors"
)

// Answer is what the statistics endpoint returns. Either ImageBase64 or
// Rows is set.
type Answer struct {
	SQL         string           `json:"sql"`
	ImageBase64 string           `json:"image_base64,omitempty"`
	Rows        []map[string]any `json:"-"`
}

// Charted reports whether the answer carries an image.
func (a Answer) Charted() bool { return a.ImageBase64 != "" }

type planner interface {
	Plan(ctx context.Context, question string) (Plan, error)
	Forget(question string)
}

type runner interface {
	Run(ctx context.Context, stmt string) (Result, error)
}

// Service answers a natural-language question end to end.
type Service struct {
	planner planner
	runner  runner
}

func NewService(p *Planner, r *Runner) *Service {
	return &Service{planner: p, runner: r}
}

// Answer plans, runs and, when asked and possible, charts a question.
// A chart that cannot be drawn falls back to the rows.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	plan, err := s.planner.Plan(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	res, err := s.runner.Run(ctx, plan.SQL)
	if err != nil {
		if IsBadQuery(err) {
			s.planner.Forget(question)
		}
		return Answer{}, err
	}

	ans := Answer{SQL: plan.SQL, Rows: res.Rows}
	if !plan.WantsChart() {
		return ans, nil
	}

	png, err := Render(plan, res)
	if errors.Is(err, ErrNotChartable) {
		return ans, nil
	}
	if err != nil {
		return Answer{}, err
	}
	ans.ImageBase64 = base64.StdEncoding.EncodeToString(png)
	return ans, nil
}

// IsBadQuery reports whether err came from an unsafe or failing statement.
func IsBadQuery(err error) bool {
	var qe *QueryError
	return errors.Is(err, ErrUnsafeSQL) || errors.As(err, &qe)
}
