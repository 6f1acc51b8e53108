package internal

import "time"

type CrawlRunStatus string

const (
	CrawlRunRunning     CrawlRunStatus = "running"
	CrawlRunCompleted   CrawlRunStatus = "completed"
	CrawlRunFailed      CrawlRunStatus = "failed"
	CrawlRunInterrupted CrawlRunStatus = "interrupted"
)

// CrawlRun summarises one traversal from a start url.
type CrawlRun struct {
	TraceId      string
	StartUrl     string
	StartedAt    time.Time
	FinishedAt   time.Time
	PageCount    int
	RecordCount  int
	LinkCount    int
	SkippedCount int
	Status       CrawlRunStatus
	Err          error
}

func NewCrawlRun(traceId string, startUrl string) *CrawlRun {
	return &CrawlRun{
		TraceId:   traceId,
		StartUrl:  startUrl,
		StartedAt: time.Now(),
		Status:    CrawlRunRunning,
	}
}

func (r *CrawlRun) Finish(status CrawlRunStatus, err error) {
	r.FinishedAt = time.Now()
	r.Status = status
	r.Err = err
}

func (r *CrawlRun) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}

	return r.Err.Error()
}
