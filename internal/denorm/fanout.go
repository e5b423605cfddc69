package denorm

import "github.com/peoplehub/backoffice/internal/events"

// Dependent names one collection holding a cached copy of a reference
// entity's name.
type Dependent struct {
	Table      string
	FKColumn   string
	NameColumn string
}

// Fanout enumerates, per reference-entity type, every collection that embeds
// its name. The propagator and the reconciler both drive off this table so
// the fan-out stays data-driven and testable without a live store.
var Fanout = map[string][]Dependent{
	events.CollectionDepartment: {
		{Table: "employees", FKColumn: "department_id", NameColumn: "department_name"},
		{Table: "attendances", FKColumn: "department_id", NameColumn: "department_name"},
		{Table: "leave_requests", FKColumn: "department_id", NameColumn: "department_name"},
		{Table: "payroll_records", FKColumn: "department_id", NameColumn: "department_name"},
	},
	events.CollectionPosition: {
		{Table: "employees", FKColumn: "position_id", NameColumn: "position_name"},
		{Table: "payroll_records", FKColumn: "position_id", NameColumn: "position_name"},
	},
	events.CollectionLeaveType: {
		{Table: "leave_requests", FKColumn: "leave_type_id", NameColumn: "leave_type_name"},
		{Table: "leave_entitlements", FKColumn: "leave_type_id", NameColumn: "leave_type_name"},
	},
}

// Source tables per reference type, used by the reconciler to rebuild the
// id -> name map each sweep.
var SourceTable = map[string]string{
	events.CollectionDepartment: "departments",
	events.CollectionPosition:   "positions",
	events.CollectionLeaveType:  "leave_types",
}
