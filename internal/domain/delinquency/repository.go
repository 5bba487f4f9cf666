package delinquency

import "context"

// ObligationReader loads obligations whose status is in statuses.
// Implementations return an empty slice, not an error, when nothing matches.
type ObligationReader interface {
	// FindOutstandingByStudent loads one student's obligations
	FindOutstandingByStudent(ctx context.Context, studentID string, statuses []PaymentStatus) ([]Obligation, error)

	// FindOutstandingByTutor loads the obligations of every student billed to a tutor
	FindOutstandingByTutor(ctx context.Context, tutorID string, statuses []PaymentStatus) ([]Obligation, error)

	// FindAllOutstanding loads the obligations of every student
	FindAllOutstanding(ctx context.Context, statuses []PaymentStatus) ([]Obligation, error)
}

// Directory resolves students and tutors.
// FindStudent and FindTutor return ErrSubjectNotFound when the id is unknown.
type Directory interface {
	FindStudent(ctx context.Context, id string) (*Student, error)
	FindTutor(ctx context.Context, id string) (*Tutor, error)
	FindStudentsByIDs(ctx context.Context, ids []string) ([]Student, error)
	FindTutorsByIDs(ctx context.Context, ids []string) ([]Tutor, error)
}
