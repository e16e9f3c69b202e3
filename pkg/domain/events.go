package domain

// EventType identifies a telemetry event.
type EventType string

const (
	EventTypeDecisionRendered    EventType = "admission.decision"
	EventTypeBreakerOpened       EventType = "admission.breaker_opened"
	EventTypeWorkflowStarted     EventType = "workflow.started"
	EventTypeWorkflowCompleted   EventType = "workflow.completed"
	EventTypeStepFailed          EventType = "workflow.step_failed"
	EventTypeCompensationFailed  EventType = "workflow.compensation_failed"
	EventTypeEngineTaskExhausted EventType = "engine.task_exhausted"
)

// Telemetry topics. Workflow events carry the workflow ID as the
// execution ID so stream consumers can filter per workflow.
const (
	TopicAdmission = "admission.events"
	TopicWorkflow  = "workflow.events"
)
