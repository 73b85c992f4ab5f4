package metrics

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	Evaluation   string
	FullPlayouts int
}

type MoveMetric struct {
	Step   int
	Turn   int
	Player int // Player ID
	Phase  string
	Action string
	SearchMetric
}

type GameMetric struct {
	ID             uuid.UUID
	StartingPlayer int // Player ID
	Winner         int // Player ID, -1 without a winner
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Turns          int
}

type Collector interface {
	Start(goroutines, cutoff int, evaluation string)
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	cutoff       int
	evaluation   string
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, cutoff int, evaluation string) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.evaluation = evaluation
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
		Evaluation:   m.evaluation,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff int, evaluation string) {}
func (m *dummyCollector) AddFullPlayout()                                 {}
func (m *dummyCollector) AddEpisode()                                     {}
func (m *dummyCollector) Complete() SearchMetric                          { return SearchMetric{} }
