package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldEndpoint   = "endpoint"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldStep       = "step"
	FieldGeneration = "generation"
	FieldCurrency   = "currency"
	FieldTheme      = "theme"
	FieldRecordID   = "record_id"
	FieldRecordType = "record_type"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentAPI       = "api"
	ComponentSession   = "session"
	ComponentTheme     = "theme"
	ComponentDashboard = "dashboard"
	ComponentForms     = "forms"
	ComponentNotify    = "notify"
	ComponentReport    = "report"
	ComponentExport    = "export"
)

// Operations defines standard operation names
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpLoadAll  = "load_all"
	OpRefresh  = "refresh"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpSync     = "sync"
	OpExport   = "export"
)
