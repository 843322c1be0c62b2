package memory

import (
	"context"
	"fmt"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
)

// SeedDemo fills the store with a small roster so the clients have something
// to show without a remote backend.
func SeedDemo(ctx context.Context, s *Store, now time.Time) error {
	day := now.UTC().Truncate(24 * time.Hour)
	at := func(d, h, m int) time.Time {
		return day.AddDate(0, 0, d).Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	workers := []model.Worker{
		{ID: "w1", Name: "John Smith", Position: "Site Supervisor", Department: "Operations", Status: model.WorkerActive,
			ContactInfo: model.ContactInfo{Email: "john.smith@example.com", Phone: "(555) 100-0001"}, Skills: []string{"Safety", "Scheduling"}, CreatedAt: at(-60, 9, 0)},
		{ID: "w2", Name: "Sarah Johnson", Position: "Electrician", Department: "Maintenance", Status: model.WorkerActive,
			ContactInfo: model.ContactInfo{Email: "sarah.johnson@example.com", Phone: "(555) 100-0002"}, Skills: []string{"Wiring"}, CreatedAt: at(-50, 9, 0)},
		{ID: "w4", Name: "Emily Davis", Position: "Technician", Department: "Maintenance", Status: model.WorkerActive,
			ContactInfo: model.ContactInfo{Email: "emily.davis@example.com", Phone: "(555) 100-0004"}, Skills: []string{"HVAC"}, CreatedAt: at(-40, 9, 0)},
		{ID: "w5", Name: "David Wilson", Position: "Coordinator", Department: "Administration", Status: model.WorkerActive,
			ContactInfo: model.ContactInfo{Email: "david.wilson@example.com", Phone: "(555) 100-0005"}, CreatedAt: at(-30, 9, 0)},
		{ID: "w7", Name: "Robert Taylor", Position: "Laborer", Department: "Operations", Status: model.WorkerInactive,
			ContactInfo: model.ContactInfo{Email: "robert.taylor@example.com", Phone: "(555) 100-0007"}, CreatedAt: at(-20, 9, 0)},
	}
	for _, w := range workers {
		if _, err := s.CreateDocument(ctx, backend.Workers, w.ID, w); err != nil {
			return fmt.Errorf("seed worker %s: %w", w.ID, err)
		}
	}

	mainSite := model.Location{Latitude: 40.7128, Longitude: -74.0060, Address: "Main Site"}
	secondSite := model.Location{Latitude: 40.7306, Longitude: -73.9352, Address: "Secondary Site"}
	checkIns := []model.CheckIn{
		{WorkerID: "w1", WorkerName: "John Smith", Type: model.TypeCheckIn, Timestamp: at(0, 8, 30), Location: mainSite},
		{WorkerID: "w4", WorkerName: "Emily Davis", Type: model.TypeCheckIn, Timestamp: at(0, 8, 45), Location: mainSite},
		{WorkerID: "w2", WorkerName: "Sarah Johnson", Type: model.TypeCheckIn, Timestamp: at(0, 9, 0), Location: mainSite},
		{WorkerID: "w5", WorkerName: "David Wilson", Type: model.TypeCheckIn, Timestamp: at(0, 9, 15), Location: mainSite},
		{WorkerID: "w1", WorkerName: "John Smith", Type: model.TypeCheckOut, Timestamp: at(0, 17, 30), Location: mainSite},
		{WorkerID: "w4", WorkerName: "Emily Davis", Type: model.TypeCheckOut, Timestamp: at(0, 17, 45), Location: mainSite},
		{WorkerID: "w7", WorkerName: "Robert Taylor", Type: model.TypeCheckIn, Timestamp: at(0, 8, 15), Location: secondSite},
	}
	for _, c := range checkIns {
		if _, err := s.CreateDocument(ctx, backend.CheckIns, backend.AutoID, c); err != nil {
			return fmt.Errorf("seed check-in: %w", err)
		}
	}

	customers := []model.Customer{
		{ID: "c1", Name: "Acme Corporation", ContactName: "John Doe", Email: "john@acme.com", Phone: "(555) 123-4567",
			Address: "123 Business Ave, Enterprise City", Industry: "Construction", Website: "www.acmecorp.com", Status: model.CustomerActive,
			JoinDate: at(-400, 0, 0), Notes: "Key client for commercial projects. Prefers communication via email.",
			Interactions: []model.Interaction{
				{ID: "i1", Type: model.InteractionMeeting, Description: "Project kickoff meeting", Date: at(-10, 10, 30), Staff: "Sarah Johnson"},
				{ID: "i2", Type: model.InteractionCall, Description: "Follow-up on project timeline", Date: at(-5, 14, 15), Staff: "David Wilson"},
			},
			Projects: []model.Project{
				{ID: "p1", Name: "Office Renovation", Status: model.ProjectInProgress, Value: 125000},
				{ID: "p2", Name: "Warehouse Construction", Status: model.ProjectCompleted, Value: 450000},
			}},
		{ID: "c2", Name: "TechSolutions Inc", ContactName: "Jane Smith", Email: "jane@techsolutions.com", Phone: "(555) 234-5678",
			Industry: "Technology", Status: model.CustomerActive, JoinDate: at(-300, 0, 0)},
		{ID: "c3", Name: "Global Builders", ContactName: "Robert Johnson", Email: "robert@globalbuilders.com", Phone: "(555) 345-6789",
			Industry: "Construction", Status: model.CustomerInactive, JoinDate: at(-200, 0, 0)},
		{ID: "c5", Name: "Metro Development", ContactName: "Michael Brown", Email: "michael@metro.com", Phone: "(555) 567-8901",
			Industry: "Real Estate", Status: model.CustomerLead, JoinDate: at(-30, 0, 0)},
	}
	for _, c := range customers {
		if _, err := s.CreateDocument(ctx, backend.Customers, c.ID, c); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}

	expires := at(30, 0, 0)
	surveys := []model.Survey{
		{ID: "s1", Title: "Customer Satisfaction Survey", Description: "Please provide feedback on your recent experience with our services.",
			Status: model.SurveyActive, CreatedAt: at(-8, 9, 0), ExpiresAt: &expires, Anonymous: true,
			ShareLink: "https://survey.workforceapp.com/s/abc123",
			Questions: model.Questions{
				&model.MultipleChoice{QuestionBase: model.QuestionBase{ID: "q1", Prompt: "How would you rate our service?", Required: true},
					Options: []string{"Excellent", "Good", "Average", "Poor", "Very Poor"}},
				&model.Rating{QuestionBase: model.QuestionBase{ID: "q2", Prompt: "How likely are you to recommend our services to others?", Required: true}, Scale: 10},
				&model.Text{QuestionBase: model.QuestionBase{ID: "q3", Prompt: "What improvements would you suggest for our services?"}},
			}},
		{ID: "s4", Title: "Site Conditions Assessment", Status: model.SurveyDraft, CreatedAt: at(-3, 9, 0),
			Questions: model.Questions{
				&model.Checkbox{QuestionBase: model.QuestionBase{ID: "q1", Prompt: "Which hazards were present?"},
					Options: []string{"Wet floors", "Exposed wiring", "Missing signage"}},
			}},
	}
	for _, sv := range surveys {
		if _, err := s.CreateDocument(ctx, backend.Surveys, sv.ID, sv); err != nil {
			return fmt.Errorf("seed survey %s: %w", sv.ID, err)
		}
	}

	responses := []model.SurveyResponse{
		{SurveyID: "s1", Respondent: "Anonymous", SubmittedAt: at(-2, 10, 30), Answers: []model.Answer{
			{QuestionID: "q1", Choices: []string{"Excellent"}}, {QuestionID: "q2", Rating: 9}, {QuestionID: "q3", Text: "More detailed project updates"}}},
		{SurveyID: "s1", Respondent: "Anonymous", SubmittedAt: at(-1, 14, 15), Answers: []model.Answer{
			{QuestionID: "q1", Choices: []string{"Good"}}, {QuestionID: "q2", Rating: 8}, {QuestionID: "q3", Text: "Faster response times to inquiries"}}},
	}
	for _, r := range responses {
		if _, err := s.CreateDocument(ctx, backend.SurveyResponses, backend.AutoID, r); err != nil {
			return fmt.Errorf("seed survey response: %w", err)
		}
	}
	return nil
}
