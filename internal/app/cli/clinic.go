package cli

import (
	"dashboard/internal/model"
	"dashboard/internal/services/clinic"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func pageFlags(cmd *cobra.Command, p *clinic.PageQuery) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "page size, server default when 0")
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func group(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	cmd.AddCommand(children...)
	return cmd
}

func (c *CLI) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show earnings, patients and the latest appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.Clinic.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(data)
		},
	}
}

// ===================== APPOINTMENTS =====================

func (c *CLI) appointmentsCommand() *cobra.Command {
	var p clinic.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Clinic.Appointments(cmd.Context(), p)
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	pageFlags(list, &p)

	cancel := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Clinic.CancelAppointment(cmd.Context(), id); err != nil {
				return err
			}
			return c.print(map[string]any{"id": id, "status": model.AppointmentCancelled})
		},
	}

	complete := &cobra.Command{
		Use:   "complete ID",
		Short: "Mark an appointment as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Clinic.CompleteAppointment(cmd.Context(), id); err != nil {
				return err
			}
			return c.print(map[string]any{"id": id, "status": model.AppointmentDone})
		},
	}

	return group("appointments", "Manage appointments", list, cancel, complete)
}

// ===================== SCHEDULES =====================

func scheduleFlags(cmd *cobra.Command, s *model.SchedulePayload) {
	cmd.Flags().StringVar(&s.Day, "day", "", "one of SAT, SUN, MON, TUE, WED, THU, FRI")
	cmd.Flags().StringVar(&s.StartTime, "start", "", "start time, HH:MM")
	cmd.Flags().StringVar(&s.EndTime, "end", "", "end time, HH:MM")
	cmd.Flags().IntVar(&s.MaxPatients, "max-patients", 0, "maximum patients")
}

func (c *CLI) schedulesCommand() *cobra.Command {
	var p clinic.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List weekly schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Clinic.Schedules(cmd.Context(), p)
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	pageFlags(list, &p)

	var created model.SchedulePayload
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Clinic.CreateSchedule(cmd.Context(), created); err != nil {
				return err
			}
			return c.print(created)
		},
	}
	scheduleFlags(create, &created)

	var updated model.SchedulePayload
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Clinic.UpdateSchedule(cmd.Context(), id, updated); err != nil {
				return err
			}
			return c.print(updated)
		},
	}
	scheduleFlags(update, &updated)

	del := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete schedules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := c.app.Clinic.DeleteSchedules(cmd.Context(), ids); err != nil {
				return err
			}
			return c.print(map[string]any{"deleted": ids})
		},
	}

	return group("schedules", "Manage weekly schedules", list, create, update, del)
}

// ===================== WORKING HOURS =====================

func workingHourFlags(cmd *cobra.Command, w *model.WorkingHourPayload) {
	cmd.Flags().StringVar(&w.StartTime, "start", "", "start, YYYY-MM-DDTHH:MM")
	cmd.Flags().StringVar(&w.EndTime, "end", "", "end, YYYY-MM-DDTHH:MM")
	cmd.Flags().IntVar(&w.PatientLeft, "patients", 0, "patients that can still book")
}

func (c *CLI) workingHoursCommand() *cobra.Command {
	var p clinic.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List working hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Clinic.WorkingHours(cmd.Context(), p)
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	pageFlags(list, &p)

	var created model.WorkingHourPayload
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a working hour slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Clinic.CreateWorkingHour(cmd.Context(), created); err != nil {
				return err
			}
			return c.print(created)
		},
	}
	workingHourFlags(create, &created)

	var updated model.WorkingHourPayload
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a working hour slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Clinic.UpdateWorkingHour(cmd.Context(), id, updated); err != nil {
				return err
			}
			return c.print(updated)
		},
	}
	workingHourFlags(update, &updated)

	del := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete working hour slots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := c.app.Clinic.DeleteWorkingHours(cmd.Context(), ids); err != nil {
				return err
			}
			return c.print(map[string]any{"deleted": ids})
		},
	}

	return group("working-hours", "Manage working hours", list, create, update, del)
}

// ===================== PROFILE =====================

func (c *CLI) profileCommand() *cobra.Command {
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the doctor profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := c.app.Clinic.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(profile)
		},
	}

	var (
		fields    = map[string]*string{}
		specialty int
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the given flags are sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := func(name string) *string {
				if !cmd.Flags().Changed(name) {
					return nil
				}
				return fields[name]
			}

			upd := model.ProfileUpdate{
				FullName:     set("full-name"),
				Gender:       set("gender"),
				DOB:          set("dob"),
				Fees:         set("fees"),
				Experience:   set("experience"),
				Education:    set("education"),
				About:        set("about"),
				AddressLine1: set("address-line1"),
				AddressLine2: set("address-line2"),
			}
			if cmd.Flags().Changed("specialty") {
				upd.Specialty = &specialty
			}

			profile, err := c.app.Clinic.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return err
			}
			return c.print(profile)
		},
	}
	for _, name := range []string{"full-name", "gender", "dob", "fees", "experience", "education", "about", "address-line1", "address-line2"} {
		fields[name] = update.Flags().String(name, "", name)
	}
	update.Flags().IntVar(&specialty, "specialty", 0, "specialty id")

	return group("profile", "Show or edit the doctor profile", show, update)
}

func (c *CLI) specialtiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "specialties",
		Short: "List medical specialties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Clinic.Specialties(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
}

// ===================== REVIEWS =====================

func (c *CLI) reviewsCommand() *cobra.Command {
	var p clinic.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List patient reviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.Clinic.Reviews(cmd.Context(), p)
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	pageFlags(list, &p)

	comment := &cobra.Command{
		Use:   "comment REVIEW_ID TEXT",
		Short: "Reply to a review",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := c.app.Clinic.CreateReviewComment(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	edit := &cobra.Command{
		Use:   "edit-comment COMMENT_ID TEXT",
		Short: "Edit a reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := c.app.Clinic.UpdateReviewComment(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	del := &cobra.Command{
		Use:   "delete-comment COMMENT_ID",
		Short: "Delete a reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Clinic.DeleteReviewComment(cmd.Context(), id); err != nil {
				return err
			}
			return c.print(map[string]any{"deleted": id})
		},
	}

	report := &cobra.Command{
		Use:   "report PATIENT_ID REASON",
		Short: "Report a patient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out, err := c.app.Clinic.CreatePatientReport(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}

	return group("reviews", "Read and answer patient reviews", list, comment, edit, del, report)
}
