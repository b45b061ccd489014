package models

// DefaultSolvingDuration is the overall solving-time budget in minutes used
// when an import carries no explicit duration setting.
const DefaultSolvingDuration = 60

// DayOfWeek names a weekday in the fixed MONDAY..SUNDAY set.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Days lists every valid weekday in order.
var Days = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether the value belongs to the weekday set.
func (d DayOfWeek) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// Year is the study-year enum.
type Year string

const (
	YearFirst  Year = "FIRST"
	YearSecond Year = "SECOND"
	YearThird  Year = "THIRD"
	YearFourth Year = "FOURTH"
	YearFifth  Year = "FIFTH"
	YearSixth  Year = "SIXTH"
)

var years = []Year{YearFirst, YearSecond, YearThird, YearFourth, YearFifth, YearSixth}

// Valid reports whether the value belongs to the year set.
func (y Year) Valid() bool {
	for _, v := range years {
		if y == v {
			return true
		}
	}
	return false
}

// SemiGroup subdivides a student group, e.g. for lab sections smaller than
// the full class. SEMI_GROUP0 is used for master students.
type SemiGroup string

const (
	SemiGroup0 SemiGroup = "SEMI_GROUP0"
	SemiGroup1 SemiGroup = "SEMI_GROUP1"
	SemiGroup2 SemiGroup = "SEMI_GROUP2"
)

var semiGroups = []SemiGroup{SemiGroup0, SemiGroup1, SemiGroup2}

// Valid reports whether the value belongs to the semi-group set.
func (s SemiGroup) Valid() bool {
	for _, v := range semiGroups {
		if s == v {
			return true
		}
	}
	return false
}

// LessonType is the lesson-kind enum.
type LessonType string

const (
	LessonSeminar    LessonType = "SEMINAR"
	LessonCourse     LessonType = "COURSE"
	LessonLaboratory LessonType = "LABORATORY"
	LessonProject    LessonType = "PROJECT"
)

var lessonTypes = []LessonType{LessonSeminar, LessonCourse, LessonLaboratory, LessonProject}

// Valid reports whether the value belongs to the lesson-type set.
func (l LessonType) Valid() bool {
	for _, v := range lessonTypes {
		if l == v {
			return true
		}
	}
	return false
}

// Timeslot is a bookable slot in the weekly grid. Times are canonical
// HH:MM:SS wall-clock strings compared lexicographically.
type Timeslot struct {
	ID        int64     `json:"id"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// Room is a teaching location.
type Room struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int64  `json:"capacity"`
	Building string `json:"building,omitempty"`
}

// TeacherTimeslot is a preference window, purely descriptive and without
// identity of its own.
type TeacherTimeslot struct {
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// Teacher holds a teacher and their ordered preference windows.
type Teacher struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	PreferredTimeslots []TeacherTimeslot `json:"preferredTimeslots"`
}

// StudentGroup describes one cohort of students.
type StudentGroup struct {
	ID               int64     `json:"id"`
	Year             Year      `json:"year"`
	Name             string    `json:"name"`
	StudentGroup     string    `json:"studentGroup,omitempty"`
	SemiGroup        SemiGroup `json:"semiGroup,omitempty"`
	NumberOfStudents int64     `json:"numberOfStudents"`
}

// Lesson carries snapshots of the resolved teacher and student group taken at
// import time, not live links. Timeslot and Room are nullable id references;
// nil means the solver is free to assign them.
type Lesson struct {
	ID           int64        `json:"id"`
	Subject      string       `json:"subject"`
	Teacher      Teacher      `json:"teacher"`
	StudentGroup StudentGroup `json:"studentGroup"`
	LessonType   LessonType   `json:"lessonType"`
	Year         Year         `json:"year"`
	Duration     int64        `json:"duration"`
	Pinned       bool         `json:"pinned"`
	Timeslot     *int64       `json:"timeslot"`
	Room         *int64       `json:"room"`
}

// HardMediumSoftScore mirrors the solver's score shape. The importer never
// produces one.
type HardMediumSoftScore struct {
	InitScore   int `json:"initScore"`
	HardScore   int `json:"hardScore"`
	MediumScore int `json:"mediumScore"`
	SoftScore   int `json:"softScore"`
}

// Timetable is the aggregate describing one complete scheduling problem
// instance. It is replaced wholesale on each import.
type Timetable struct {
	Timeslots []Timeslot `json:"timeslots"`
	Rooms     []Room     `json:"rooms"`
	Lessons   []Lesson   `json:"lessons"`
	Duration  int64      `json:"duration"`
	// ConstraintConfiguration maps constraint names to opaque hard/medium/soft
	// weight strings interpreted only by the solver.
	ConstraintConfiguration map[string]string    `json:"timetableConstraintConfiguration"`
	Score                   *HardMediumSoftScore `json:"score"`
	SolverStatus            *string              `json:"solverStatus"`
}
