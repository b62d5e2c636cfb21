package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/internal/service"
	"github.com/noah-isme/edu-manager/pkg/export"
)

// entityCommands builds one command group per record type. rt is resolved
// lazily because the database is only bootstrapped once a command runs.
func entityCommands(rt func() *Runtime, streams *IOStreams) []*cobra.Command {
	table := tableFunc(func(ctx context.Context, entity string) (export.Dataset, error) {
		return rt().Exports.Dataset(ctx, entity)
	})

	lessons := Entity[service.LessonRequest]{
		Name:     service.EntityLessons,
		Singular: "lesson",
		Fields: []Field[service.LessonRequest]{
			{Flag: "section", Usage: "section title, created when missing (e.g. " + strings.Join(models.DefaultSectionTitles, ", ") + ")", Value: func(r *service.LessonRequest) *string { return &r.Section }},
			{Flag: "number", Usage: "lesson number", Value: func(r *service.LessonRequest) *string { return &r.Number }},
			{Flag: "criteria", Usage: "topic / assessment criteria", Value: func(r *service.LessonRequest) *string { return &r.Criteria }},
			{Flag: "hours", Usage: "hours", Value: func(r *service.LessonRequest) *string { return &r.Hours }},
			{Flag: "type", Usage: "lesson type: " + strings.Join(models.LessonTypes, " | "), Value: func(r *service.LessonRequest) *string { return &r.Type }},
		},
		Load: func(ctx context.Context, id int64) (service.LessonRequest, error) {
			row, err := rt().Lessons.Get(ctx, id)
			if err != nil {
				return service.LessonRequest{}, err
			}
			return service.LessonRequestFrom(row), nil
		},
		Create: func(ctx context.Context, req service.LessonRequest) (int64, error) {
			l, err := rt().Lessons.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return l.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.LessonRequest) error {
			_, err := rt().Lessons.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().Lessons.Delete(ctx, id) },
	}

	modules := Entity[service.ModuleRequest]{
		Name:     service.EntityModules,
		Singular: "module",
		Fields: []Field[service.ModuleRequest]{
			{Flag: "code", Usage: "module code", Value: func(r *service.ModuleRequest) *string { return &r.Code }},
			{Flag: "title", Usage: "module title", Value: func(r *service.ModuleRequest) *string { return &r.Title }},
			{Flag: "total-hours", Usage: "total hours", Value: func(r *service.ModuleRequest) *string { return &r.TotalHours }},
		},
		Load: func(ctx context.Context, id int64) (service.ModuleRequest, error) {
			m, err := rt().Modules.Get(ctx, id)
			if err != nil {
				return service.ModuleRequest{}, err
			}
			return service.ModuleRequestFrom(m), nil
		},
		Create: func(ctx context.Context, req service.ModuleRequest) (int64, error) {
			m, err := rt().Modules.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return m.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.ModuleRequest) error {
			_, err := rt().Modules.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().Modules.Delete(ctx, id) },
	}

	sections := Entity[service.SectionRequest]{
		Name:     service.EntitySections,
		Singular: "section",
		Fields: []Field[service.SectionRequest]{
			{Flag: "module-id", Usage: "parent module id (default: first module)", Value: func(r *service.SectionRequest) *string { return &r.ModuleID }},
			{Flag: "code", Usage: "section code (default: first 10 characters of the title)", Value: func(r *service.SectionRequest) *string { return &r.Code }},
			{Flag: "title", Usage: "section title", Value: func(r *service.SectionRequest) *string { return &r.Title }},
			{Flag: "hours", Usage: "hours (default 0)", Value: func(r *service.SectionRequest) *string { return &r.Hours }},
		},
		Load: func(ctx context.Context, id int64) (service.SectionRequest, error) {
			s, err := rt().Sections.Get(ctx, id)
			if err != nil {
				return service.SectionRequest{}, err
			}
			return service.SectionRequestFrom(s), nil
		},
		Create: func(ctx context.Context, req service.SectionRequest) (int64, error) {
			s, err := rt().Sections.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return s.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.SectionRequest) error {
			_, err := rt().Sections.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().Sections.Delete(ctx, id) },
		Extra: []*cobra.Command{{
			Use:   "titles",
			Short: "List section titles offered for lessons",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				titles, err := rt().Sections.Titles(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range titles {
					fmt.Fprintln(streams.Out, t)
				}
				return nil
			},
		}},
	}

	teachers := Entity[service.TeacherRequest]{
		Name:     service.EntityTeachers,
		Singular: "teacher",
		Fields: []Field[service.TeacherRequest]{
			{Flag: "full-name", Usage: "full name", Value: func(r *service.TeacherRequest) *string { return &r.FullName }},
			{Flag: "position", Usage: "position", Value: func(r *service.TeacherRequest) *string { return &r.Position }},
		},
		Load: func(ctx context.Context, id int64) (service.TeacherRequest, error) {
			t, err := rt().Teachers.Get(ctx, id)
			if err != nil {
				return service.TeacherRequest{}, err
			}
			return service.TeacherRequestFrom(t), nil
		},
		Create: func(ctx context.Context, req service.TeacherRequest) (int64, error) {
			t, err := rt().Teachers.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return t.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.TeacherRequest) error {
			_, err := rt().Teachers.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().Teachers.Delete(ctx, id) },
	}

	students := Entity[service.StudentRequest]{
		Name:     service.EntityStudents,
		Singular: "student",
		Fields: []Field[service.StudentRequest]{
			{Flag: "full-name", Usage: "full name", Value: func(r *service.StudentRequest) *string { return &r.FullName }},
			{Flag: "birthdate", Usage: "birth date, YYYY-MM-DD", Value: func(r *service.StudentRequest) *string { return &r.BirthDate }},
			{Flag: "class", Usage: "class", Value: func(r *service.StudentRequest) *string { return &r.Class }},
		},
		Load: func(ctx context.Context, id int64) (service.StudentRequest, error) {
			s, err := rt().Students.Get(ctx, id)
			if err != nil {
				return service.StudentRequest{}, err
			}
			return service.StudentRequestFrom(s), nil
		},
		Create: func(ctx context.Context, req service.StudentRequest) (int64, error) {
			s, err := rt().Students.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return s.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.StudentRequest) error {
			_, err := rt().Students.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().Students.Delete(ctx, id) },
	}

	classPlans := Entity[service.ClassPlanRequest]{
		Name:     service.EntityClassPlans,
		Singular: "class plan",
		Fields: []Field[service.ClassPlanRequest]{
			{Flag: "teacher", Usage: "teacher full name (unknown names leave the plan without a teacher)",
				Value: func(r *service.ClassPlanRequest) *string { return &r.TeacherName },
				Reset: func(r *service.ClassPlanRequest) { r.TeacherID = "" }},
			{Flag: "teacher-id", Usage: "teacher id",
				Value: func(r *service.ClassPlanRequest) *string { return &r.TeacherID },
				Reset: func(r *service.ClassPlanRequest) { r.TeacherName = "" }},
			{Flag: "class", Usage: "class", Value: func(r *service.ClassPlanRequest) *string { return &r.Class }},
			{Flag: "year", Usage: "year", Value: func(r *service.ClassPlanRequest) *string { return &r.Year }},
			{Flag: "file", Usage: "path of the plan document (pdf/docx)", Value: func(r *service.ClassPlanRequest) *string { return &r.FilePath }},
		},
		Load: func(ctx context.Context, id int64) (service.ClassPlanRequest, error) {
			p, err := rt().ClassPlans.Get(ctx, id)
			if err != nil {
				return service.ClassPlanRequest{}, err
			}
			return service.ClassPlanRequestFrom(p), nil
		},
		Create: func(ctx context.Context, req service.ClassPlanRequest) (int64, error) {
			p, err := rt().ClassPlans.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.ClassPlanRequest) error {
			_, err := rt().ClassPlans.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().ClassPlans.Delete(ctx, id) },
	}

	passports := Entity[service.SocialPassportRequest]{
		Name:     service.EntitySocialPassports,
		Singular: "social passport",
		Fields: []Field[service.SocialPassportRequest]{
			{Flag: "class", Usage: "class", Value: func(r *service.SocialPassportRequest) *string { return &r.Class }},
			{Flag: "year", Usage: "year", Value: func(r *service.SocialPassportRequest) *string { return &r.Year }},
			{Flag: "total-students", Usage: "number of students", Value: func(r *service.SocialPassportRequest) *string { return &r.TotalStudents }},
			{Flag: "full-families", Usage: "students from two-parent families", Value: func(r *service.SocialPassportRequest) *string { return &r.FullFamilies }},
			{Flag: "low-income", Usage: "students from low-income families", Value: func(r *service.SocialPassportRequest) *string { return &r.LowIncome }},
			{Flag: "disabilities", Usage: "students with disabilities", Value: func(r *service.SocialPassportRequest) *string { return &r.Disabilities }},
			{Flag: "orphaned", Usage: "orphaned students", Value: func(r *service.SocialPassportRequest) *string { return &r.Orphaned }},
			{Flag: "many-children", Usage: "students from large families", Value: func(r *service.SocialPassportRequest) *string { return &r.ManyChildren }},
		},
		Load: func(ctx context.Context, id int64) (service.SocialPassportRequest, error) {
			p, err := rt().SocialPassports.Get(ctx, id)
			if err != nil {
				return service.SocialPassportRequest{}, err
			}
			return service.SocialPassportRequestFrom(p), nil
		},
		Create: func(ctx context.Context, req service.SocialPassportRequest) (int64, error) {
			p, err := rt().SocialPassports.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.SocialPassportRequest) error {
			_, err := rt().SocialPassports.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().SocialPassports.Delete(ctx, id) },
	}

	grades := Entity[service.GradeReportRequest]{
		Name:     service.EntityGradeReports,
		Singular: "grade report",
		Fields: []Field[service.GradeReportRequest]{
			{Flag: "student", Usage: "student full name",
				Value: func(r *service.GradeReportRequest) *string { return &r.StudentName },
				Reset: func(r *service.GradeReportRequest) { r.StudentID = "" }},
			{Flag: "student-id", Usage: "student id",
				Value: func(r *service.GradeReportRequest) *string { return &r.StudentID },
				Reset: func(r *service.GradeReportRequest) { r.StudentName = "" }},
			{Flag: "subject", Usage: "subject", Value: func(r *service.GradeReportRequest) *string { return &r.Subject }},
			{Flag: "s1", Usage: "first semester grade (non-numeric means none)", Value: func(r *service.GradeReportRequest) *string { return &r.S1 }},
			{Flag: "s2", Usage: "second semester grade (non-numeric means none)", Value: func(r *service.GradeReportRequest) *string { return &r.S2 }},
		},
		Load: func(ctx context.Context, id int64) (service.GradeReportRequest, error) {
			g, err := rt().GradeReports.Get(ctx, id)
			if err != nil {
				return service.GradeReportRequest{}, err
			}
			return service.GradeReportRequestFrom(g), nil
		},
		Create: func(ctx context.Context, req service.GradeReportRequest) (int64, error) {
			g, err := rt().GradeReports.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return g.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.GradeReportRequest) error {
			_, err := rt().GradeReports.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().GradeReports.Delete(ctx, id) },
	}

	protocols := Entity[service.ExamProtocolRequest]{
		Name:     service.EntityExamProtocols,
		Singular: "exam protocol",
		Fields: []Field[service.ExamProtocolRequest]{
			{Flag: "teacher", Usage: "teacher full name (unknown names leave the protocol without a teacher)",
				Value: func(r *service.ExamProtocolRequest) *string { return &r.TeacherName },
				Reset: func(r *service.ExamProtocolRequest) { r.TeacherID = "" }},
			{Flag: "teacher-id", Usage: "teacher id",
				Value: func(r *service.ExamProtocolRequest) *string { return &r.TeacherID },
				Reset: func(r *service.ExamProtocolRequest) { r.TeacherName = "" }},
			{Flag: "subject", Usage: "subject", Value: func(r *service.ExamProtocolRequest) *string { return &r.Subject }},
			{Flag: "class", Usage: "class", Value: func(r *service.ExamProtocolRequest) *string { return &r.Class }},
			{Flag: "date", Usage: "exam date, YYYY-MM-DD", Value: func(r *service.ExamProtocolRequest) *string { return &r.Date }},
			{Flag: "file", Usage: "path of the protocol document (pdf/docx)", Value: func(r *service.ExamProtocolRequest) *string { return &r.FilePath }},
		},
		Load: func(ctx context.Context, id int64) (service.ExamProtocolRequest, error) {
			p, err := rt().ExamProtocols.Get(ctx, id)
			if err != nil {
				return service.ExamProtocolRequest{}, err
			}
			return service.ExamProtocolRequestFrom(p), nil
		},
		Create: func(ctx context.Context, req service.ExamProtocolRequest) (int64, error) {
			p, err := rt().ExamProtocols.Create(ctx, req)
			if err != nil {
				return 0, err
			}
			return p.ID, nil
		},
		Update: func(ctx context.Context, id int64, req service.ExamProtocolRequest) error {
			_, err := rt().ExamProtocols.Update(ctx, id, req)
			return err
		},
		Delete: func(ctx context.Context, id int64) error { return rt().ExamProtocols.Delete(ctx, id) },
	}

	return []*cobra.Command{
		lessons.Command(streams, table),
		modules.Command(streams, table),
		sections.Command(streams, table),
		teachers.Command(streams, table),
		students.Command(streams, table),
		classPlans.Command(streams, table),
		passports.Command(streams, table),
		grades.Command(streams, table),
		protocols.Command(streams, table),
	}
}
