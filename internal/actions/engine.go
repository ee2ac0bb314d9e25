package actions

import (
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"server-actions/internal/platform"

	"github.com/google/uuid"
)

// Reporter observes finished runs. The engine calls it after the record
// reaches a terminal status, on the run's own goroutine.
type Reporter func(actx *Context, rec *Record)

// Engine runs a button's action list sequentially and keeps the execution
// history. One Run call handles one press; concurrent presses get independent
// records.
type Engine struct {
	registry *Registry
	history  *History
	reporter Reporter
}

func NewEngine(registry *Registry, reporter Reporter) *Engine {
	return &Engine{
		registry: registry,
		history:  NewHistory(),
		reporter: reporter,
	}
}

func (e *Engine) History() *History { return e.history }

// Run executes the batch in declared order. A failed action with a
// recoverable cause lets the rest of the batch run; anything structural or
// unexpected stops the run at that action. Earlier successes are never undone
// here; that is what Rollback is for.
func (e *Engine) Run(actx *Context, acts []Action) *Record {
	rec := &Record{
		ID:        uuid.NewString(),
		GuildID:   actx.GuildID,
		ActorID:   actx.Actor.User.ID,
		ButtonID:  actx.ButtonID,
		Actions:   acts,
		Status:    StatusPending,
		StartedAt: time.Now(),
		ctx:       actx,
	}
	e.history.Put(rec)
	rec.setStatus(StatusRunning)
	log.Printf("[INFO] Execution %s: running %d actions for button %s (actor %s)", rec.ID, len(acts), rec.ButtonID, rec.ActorID)

	for i, action := range acts {
		if action.DelaySeconds > 0 {
			time.Sleep(time.Duration(action.DelaySeconds) * time.Second)
		}

		res, err := e.runAction(actx, action)
		er := ExecResult{ActionType: action.Type, ActionIndex: i}

		if err != nil {
			er.Err = err
			er.Continuable = continuable(err)
			rec.Results = append(rec.Results, er)
			rec.FailCount++
			metricActionsExecuted.WithLabelValues(string(action.Type), "failed").Inc()
			log.Printf("[ERR] Execution %s: action %d (%s) failed: %v", rec.ID, i, action.Type, err)

			if !er.Continuable {
				if isExecutionError(err) {
					rec.setStatus(StatusError)
				} else {
					rec.setStatus(StatusFailed)
				}
				break
			}
			continue
		}

		er.Success = res.Success
		er.Result = res
		rec.Results = append(rec.Results, er)
		if res.Success {
			rec.SuccessCount++
			metricActionsExecuted.WithLabelValues(string(action.Type), "ok").Inc()
		} else {
			rec.FailCount++
			metricActionsExecuted.WithLabelValues(string(action.Type), "failed").Inc()
		}
		e.announce(actx, action, res)
	}

	rec.EndedAt = time.Now()
	if !rec.Terminal() {
		rec.setStatus(classify(rec))
	}
	metricRunsTotal.WithLabelValues(string(rec.Status)).Inc()
	metricRunDuration.Observe(rec.EndedAt.Sub(rec.StartedAt).Seconds())
	log.Printf("[INFO] Execution %s: %s (%d ok, %d failed)", rec.ID, rec.Status, rec.SuccessCount, rec.FailCount)

	if e.reporter != nil {
		e.reporter(actx, rec)
	}
	return rec
}

// classify derives the terminal status of a run that did not stop on a fatal
// error.
func classify(rec *Record) Status {
	switch {
	case rec.FailCount == 0:
		return StatusCompleted
	case rec.SuccessCount > 0:
		return StatusPartialSuccess
	default:
		return StatusFailed
	}
}

// runAction dispatches one action through the shared pipeline. A panicking
// executor is contained here and surfaces as an ExecutionError so the run can
// finish its bookkeeping.
func (e *Engine) runAction(actx *Context, action Action) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] Panic in %s action: %v\n%s", action.Type, r, debug.Stack())
			res = nil
			err = &ExecutionError{Err: fmt.Errorf("panic in %s action: %v", action.Type, r)}
		}
	}()

	exec, err := e.registry.Get(action.Type)
	if err != nil {
		return nil, err
	}
	return Execute(actx, exec, action)
}

// announce posts the action's configured result message. Announcement failures
// are logged, never escalated; the action already ran.
func (e *Engine) announce(actx *Context, action Action, res *Result) {
	if action.Result == nil || action.Result.Message == "" {
		return
	}
	channelID := action.Result.ChannelID
	if channelID == "" {
		channelID = actx.ChannelID
	}
	content := Substitute(action.Result.Message, actx)
	if _, err := actx.Client.SendMessage(channelID, content); err != nil {
		log.Printf("[WARN] Execution announcement to channel %s failed: %v", channelID, err)
	}
}

// Rollback reverses one successfully executed action from a finished run. The
// stored execution context is reused, so rollback acts with the same client
// and guild scope the original run had.
func (e *Engine) Rollback(executionID string, actionIndex int) (*Result, error) {
	rec, ok := e.history.Get(executionID)
	if !ok {
		return nil, &platform.NotFoundError{Resource: "execution", ID: executionID}
	}
	if !rec.Terminal() {
		return nil, &ValidationError{Message: fmt.Sprintf("execution %s is still running", executionID)}
	}
	if actionIndex < 0 || actionIndex >= len(rec.Results) {
		return nil, &ValidationError{Message: fmt.Sprintf("execution %s has no action at index %d", executionID, actionIndex)}
	}

	er := rec.Results[actionIndex]
	if er.Result == nil || !er.Success {
		return nil, &ValidationError{Message: fmt.Sprintf("action %d of execution %s did not succeed, nothing to roll back", actionIndex, executionID)}
	}

	exec, err := e.registry.Get(er.ActionType)
	if err != nil {
		return nil, err
	}
	rb, ok := exec.(Rollbackable)
	if !ok {
		metricRollbacks.WithLabelValues(string(er.ActionType), "unsupported").Inc()
		return rollbackUnsupported(er.ActionType), nil
	}

	res, err := rb.Rollback(rec.ctx, rec.Actions[actionIndex], er.Result)
	switch {
	case err != nil:
		metricRollbacks.WithLabelValues(string(er.ActionType), "failed").Inc()
		log.Printf("[ERR] Rollback of action %d in execution %s failed: %v", actionIndex, executionID, err)
	case res != nil && !res.Success:
		metricRollbacks.WithLabelValues(string(er.ActionType), "partial").Inc()
	default:
		metricRollbacks.WithLabelValues(string(er.ActionType), "ok").Inc()
		log.Printf("[INFO] Rolled back action %d (%s) of execution %s", actionIndex, er.ActionType, executionID)
	}
	return res, err
}
