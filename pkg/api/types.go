package api

// APIResponse is the standard envelope for every JSON response this
// server sends.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the admin API server.
type ServerConfig struct {
	Port int
	Bind string
}

// ElementInstanceResponse is the JSON projection of tables.ElementInstanceRecord.
type ElementInstanceResponse struct {
	Key                int64  `json:"key"`
	ProcessInstanceKey int64  `json:"process_instance_key"`
	ElementID          string `json:"element_id"`
}

// SubscriptionResponse is the JSON projection of a subscription row.
type SubscriptionResponse struct {
	ElementInstanceKey int64  `json:"element_instance_key"`
	MessageName        string `json:"message_name"`
	State              string `json:"state"`
	CommandSentTime    int64  `json:"command_sent_time"`
}

// TimerResponse is the JSON projection of a timer row.
type TimerResponse struct {
	ElementInstanceKey int64 `json:"element_instance_key"`
	TimerKey           int64 `json:"timer_key"`
	DueDate            int64 `json:"due_date"`
}

// JobResponse is the JSON projection of a job row.
type JobResponse struct {
	ElementInstanceKey int64  `json:"element_instance_key"`
	JobKey             int64  `json:"job_key"`
	Type               string `json:"type"`
	Deadline           int64  `json:"deadline"`
}

// ColumnFamilyStat is the JSON projection of columnfamily.Stat.
type ColumnFamilyStat struct {
	Name     string `json:"name"`
	DiskSize uint64 `json:"disk_size_bytes"`
}
