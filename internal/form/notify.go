package form

import (
	"sync"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ToastDuration is how long a notification stays on screen.
const ToastDuration = 3 * time.Second

// Notification is a transient message surfaced after a mutation settles.
type Notification struct {
	Title       string
	Description string
	Status      Status
	Duration    time.Duration
	Closable    bool
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func success(title string) Notification {
	return Notification{Title: title, Status: StatusSuccess, Duration: ToastDuration, Closable: true}
}

func failure(title string, err error) Notification {
	return Notification{Title: title, Description: err.Error(), Status: StatusError, Duration: ToastDuration, Closable: true}
}

// Collector keeps notifications in order for later display.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

func (c *Collector) All() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}
