package app

import (
	"fmt"
	"strings"

	"balancer/hal"
	"balancer/kernel"
)

type faultBanner interface {
	Fault(msg string)
}

// panicHandler reports task panics. The scheduler keeps running the task,
// so only the first panic of each task is logged in full; repeats are
// counted at powers of two.
type panicHandler struct {
	log    hal.Logger
	banner faultBanner
}

func newPanicHandler(log hal.Logger, banner faultBanner) *panicHandler {
	return &panicHandler{log: log, banner: banner}
}

func (p *panicHandler) handle(info kernel.PanicInfo) {
	if p.banner != nil {
		p.banner.Fault(fmt.Sprintf("%s: %v (x%d)", info.Task, info.Value, info.Count))
	}
	if p.log == nil {
		return
	}
	if info.Count > 1 {
		if info.Count&(info.Count-1) == 0 {
			p.log.WriteLineString(fmt.Sprintf("panic: task=%s count=%d", info.Task, info.Count))
		}
		return
	}

	p.log.WriteLineString(fmt.Sprintf("panic: task=%s value=%v", info.Task, info.Value))
	if len(info.Stack) == 0 {
		p.log.WriteLineString("stack: unavailable")
		return
	}
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line == "" {
			continue
		}
		p.log.WriteLineString(line)
	}
}
