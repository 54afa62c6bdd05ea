package model

// Page is the paginated envelope every list endpoint returns.
type Page[T any] struct {
	Count      int  `json:"count"`
	TotalPages int  `json:"total_pages"`
	Current    int  `json:"current"`
	PageSize   int  `json:"page_size"`
	Previous   *int `json:"previous"`
	Next       *int `json:"next"`
	Results    []T  `json:"results"`
}

type PatientUser struct {
	FullName string  `json:"full_name"`
	DOB      string  `json:"dob"`
	Image    *string `json:"image,omitempty"`
}

type Patient struct {
	ID   *int        `json:"id,omitempty"`
	User PatientUser `json:"user"`
}

// Appointment statuses: PE pending, PA paid, D done, M missed, C cancelled.
const (
	AppointmentPending   = "PE"
	AppointmentPaid      = "PA"
	AppointmentDone      = "D"
	AppointmentMissed    = "M"
	AppointmentCancelled = "C"
)

type Appointment struct {
	ID       int     `json:"id"`
	Patient  Patient `json:"patient"`
	Status   string  `json:"status"`
	Datetime string  `json:"datetime"`
	Fees     float64 `json:"fees"`
}

type DashboardData struct {
	TotalEarnings      float64       `json:"total_earnings"`
	TotalPatients      int           `json:"total_patients"`
	TotalAppointments  int           `json:"total_appointments"`
	LatestAppointments []Appointment `json:"latest_appointments"`
}

type Schedule struct {
	ID          int    `json:"id"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	MaxPatients int    `json:"max_patients"`
}

type SchedulePayload struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	MaxPatients int    `json:"max_patients"`
}

type WorkingHour struct {
	ID          *int   `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	PatientLeft int    `json:"patient_left"`
}

type WorkingHourPayload struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	PatientLeft int    `json:"patient_left"`
}

type Specialty struct {
	ID     int     `json:"id"`
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	NameAr *string `json:"name_ar,omitempty"`
	Icon   *string `json:"icon,omitempty"`
}

type DoctorProfile struct {
	ID             string  `json:"id"`
	Role           string  `json:"role"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Image          *string `json:"image"`
	Gender         string  `json:"gender"`
	DOB            *string `json:"dob"`
	Specialty      any     `json:"specialty"`
	Fees           string  `json:"fees"`
	Experience     string  `json:"experience"`
	Education      string  `json:"education"`
	About          *string `json:"about"`
	Status         string  `json:"status"`
	AddressLine1   string  `json:"address_line1"`
	AddressLine2   string  `json:"address_line2"`
	IsVerified     bool    `json:"is_verified"`
	DegreeDocument *string `json:"degree_document"`
	Rating         float64 `json:"rating"`
	ReviewersNum   int     `json:"reviewers_num"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FullName     *string `json:"full_name,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	DOB          *string `json:"dob,omitempty"`
	Fees         *string `json:"fees,omitempty"`
	Experience   *string `json:"experience,omitempty"`
	Education    *string `json:"education,omitempty"`
	About        *string `json:"about,omitempty"`
	Specialty    *int    `json:"specialty,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
}

type ReviewComment struct {
	ID        int    `json:"id"`
	Review    int    `json:"review"`
	Type      string `json:"type"`
	User      User   `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Review struct {
	ID        int             `json:"id"`
	Patient   Patient         `json:"patient"`
	Rating    float64         `json:"rating"`
	Content   string          `json:"content"`
	Doctor    string          `json:"doctor"`
	Comments  []ReviewComment `json:"comments"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type PatientReport struct {
	ID        int    `json:"id"`
	Doctor    int    `json:"doctor"`
	Patient   int    `json:"patient"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
}
