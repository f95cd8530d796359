package job

import (
	"context"

	"github.com/simppl/reddify/internal/service"
)

// ClassifierHealthJob re-probes the predict services so a model that
// comes back after an outage flips its availability flag without a
// process restart.
type ClassifierHealthJob struct {
	classifiers *service.ClassifierService
}

func NewClassifierHealthJob(classifiers *service.ClassifierService) *ClassifierHealthJob {
	return &ClassifierHealthJob{classifiers: classifiers}
}

func (j *ClassifierHealthJob) Name() string {
	return "classifier_health"
}

func (j *ClassifierHealthJob) Run(ctx context.Context) error {
	j.classifiers.CheckAvailability(ctx)
	return nil
}
