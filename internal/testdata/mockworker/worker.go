package mockworker

import (
	"github.com/stretchr/testify/mock"

	"termtidy-web/internal/model"
)

type Worker struct {
	mock.Mock
}

func (m *Worker) Enqueue(event model.UsageEvent) {
	m.Called(event)
}

func (m *Worker) Shutdown() {
	m.Called()
}
