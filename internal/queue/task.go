package queue

type TaskType string

// TaskTypeActivityEvent fans a persisted activity record out to live
// SSE subscribers and collaborator notifications. It is the only task
// kind the stream carries; anything else is rejected at parse time.
const TaskTypeActivityEvent TaskType = "activity_event"
