package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Job struct {
	Name string
	Spec string
	Run  func()
}

// NewScheduler registers jobs on a cron running in loc. The caller starts it.
func NewScheduler(loc *time.Location, jobs ...Job) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))
	for _, j := range jobs {
		if _, err := c.AddFunc(j.Spec, j.Run); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.Name, err)
		}
		log.Printf("✅ Cron job %s scheduled (%s).", j.Name, j.Spec)
	}
	return c, nil
}
