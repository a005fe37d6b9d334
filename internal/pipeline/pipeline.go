package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Stage is one named step of the pipeline. Run returns the number of
// records the stage handled successfully.
type Stage struct {
	Name        string
	Description string
	Run         func() (int, error)
}

// Summary reports the outcome of one full pipeline run.
type Summary struct {
	RunID      string
	Successful int
	Failed     int
}

// Success reports whether every stage succeeded.
func (s Summary) Success() bool { return s.Failed == 0 }

// Runner executes stages strictly in order. A stage failure is logged
// and the runner continues with the next stage; there is no rollback
// across stages.
type Runner struct {
	stages []Stage
	log    *logrus.Entry
}

func NewRunner(stages []Stage, log *logrus.Entry) *Runner {
	return &Runner{stages: stages, log: log}
}

// Run executes every stage once and returns the aggregate summary.
func (r *Runner) Run() Summary {
	summary := Summary{RunID: uuid.NewString()}
	log := r.log.WithField("run_id", summary.RunID)

	log.WithField("stages", len(r.stages)).Info("pipeline run starting")

	for i, stage := range r.stages {
		stageLog := log.WithField("stage", stage.Name)
		stageLog.Infof("[%d/%d] %s", i+1, len(r.stages), stage.Description)

		count, err := r.runStage(stage)
		if err != nil {
			stageLog.Errorf("stage failed: %v", err)
			summary.Failed++
			continue
		}

		stageLog.WithField("records", count).Info("stage completed")
		summary.Successful++
	}

	log.WithFields(logrus.Fields{
		"successful": summary.Successful,
		"failed":     summary.Failed,
	}).Info("pipeline run finished")

	return summary
}

// runStage isolates one stage execution, converting panics into stage
// failures so a misbehaving stage cannot take down the driver.
func (r *Runner) runStage(stage Stage) (count int, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stage panicked: %v", rec)
		}
		observeStage(stage.Name, start, err)
	}()

	return stage.Run()
}
