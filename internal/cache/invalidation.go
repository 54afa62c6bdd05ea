package cache

import "log/slog"

type Mutation string

const (
	AppointmentCancelled Mutation = "appointment.cancel"
	AppointmentCompleted Mutation = "appointment.complete"

	ScheduleCreated Mutation = "schedule.create"
	ScheduleUpdated Mutation = "schedule.update"
	ScheduleDeleted Mutation = "schedule.delete"

	WorkingHourCreated Mutation = "working-hour.create"
	WorkingHourUpdated Mutation = "working-hour.update"
	WorkingHourDeleted Mutation = "working-hour.delete"

	ProfileUpdated Mutation = "profile.update"

	CommentCreated Mutation = "comment.create"
	CommentUpdated Mutation = "comment.update"
	CommentDeleted Mutation = "comment.delete"

	PatientReported Mutation = "patient-report.create"

	SessionChanged Mutation = "session.change"
)

// Invalidations maps every mutation to the namespaces it makes stale.
var Invalidations = map[Mutation][]Namespace{
	AppointmentCancelled: {Appointments, Dashboard},
	AppointmentCompleted: {Appointments, Dashboard},

	ScheduleCreated: {Schedules},
	ScheduleUpdated: {Schedules},
	ScheduleDeleted: {Schedules},

	WorkingHourCreated: {WorkingHours},
	WorkingHourUpdated: {WorkingHours},
	WorkingHourDeleted: {WorkingHours},

	ProfileUpdated: {DoctorProfile},

	CommentCreated: {Reviews},
	CommentUpdated: {Reviews},
	CommentDeleted: {Reviews},

	PatientReported: {},

	SessionChanged: Namespaces,
}

// Invalidate applies the table entry of m.
func (c *Cache) Invalidate(m Mutation) {
	namespaces, ok := Invalidations[m]
	if !ok {
		c.log.Warn("unknown mutation, nothing invalidated", slog.String("mutation", string(m)))
		return
	}

	c.InvalidateNamespaces(namespaces...)
	c.log.Debug("cache invalidated", slog.String("mutation", string(m)), slog.Int("namespaces", len(namespaces)))
}
