package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"
	"edconnect_backend/pkg/monitoring"
	"edconnect_backend/pkg/privacy"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TutorDeps 组装 TutorService 所需的协作者
type TutorDeps struct {
	Repo         *repository.TutoringRepository
	UserRepo     *repository.UserRepository
	OrgRepo      *repository.OrganizationRepository
	Completer    ChatCompleter
	Redactor     *privacy.Redactor
	Concepts     *ConceptExtractor
	Summarizer   *SessionSummarizer
	Archive      *TranscriptArchive
	Achievements *AchievementService
	Timeout      time.Duration
	Log          *zap.Logger
}

type TutorService struct {
	TutorDeps
	// 保证同一学生同一科目最多一个进行中的会话
	sessionMu sync.Mutex
	now       func() time.Time
}

func NewTutorService(deps TutorDeps) *TutorService {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Redactor == nil {
		deps.Redactor = privacy.NewRedactor(nil, deps.Log)
	}
	if deps.Concepts == nil {
		deps.Concepts = NewConceptExtractor(nil)
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultProviderTimeout
	}
	if deps.Summarizer == nil {
		deps.Summarizer = NewSessionSummarizer(deps.Completer, deps.Timeout, deps.Log)
	}
	return &TutorService{TutorDeps: deps, now: time.Now}
}

type TutorReply struct {
	SessionID   uint                   `json:"sessionId"`
	UserMessage *model.TutoringMessage `json:"userMessage,omitempty"`
	Message     *model.TutoringMessage `json:"message"`
	Concepts    []string               `json:"concepts"`
	Redactions  int                    `json:"redactions"`
}

// GetOrCreateSession 返回学生在该科目下进行中的会话，没有则新建
func (s *TutorService) GetOrCreateSession(student *model.User, subject, topic string) (*model.TutoringSession, bool, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, false, fmt.Errorf("%w: subject is required", util.ErrInvalidInput)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.Repo.FindActiveSession(student.ID, subject)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	session = &model.TutoringSession{
		StudentID:        student.ID,
		Subject:          subject,
		Topic:            strings.TrimSpace(topic),
		StartedAt:        s.now(),
		ConceptsCovered:  []string{},
		ImprovementAreas: []string{},
		StrengthAreas:    []string{},
	}
	if err := s.Repo.CreateSession(session); err != nil {
		return nil, false, err
	}
	s.Log.Info("Tutoring session started", zap.Uint("sessionId", session.ID), zap.Uint("studentId", student.ID), zap.String("subject", subject))
	return session, true, nil
}

func (s *TutorService) ownSession(student *model.User, sessionID uint) (*model.TutoringSession, error) {
	session, err := s.Repo.FindSession(repository.OwnAccess(student.ID), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// identitiesFor 返回账号资料和请求中携带的学生信息，两者都会被脱敏
func (s *TutorService) identitiesFor(student *model.User, studentContext *privacy.Identity) []*privacy.Identity {
	account := &privacy.Identity{FullName: student.FullName, Email: student.Email}
	if s.UserRepo != nil {
		if profile, err := s.UserRepo.FindStudentProfile(student.ID); err == nil {
			account.StudentID = profile.StudentNumber
		}
	}
	if s.OrgRepo != nil && student.SchoolID != nil {
		if school, err := s.OrgRepo.FindSchoolByID(*student.SchoolID); err == nil {
			account.SchoolName = school.Name
		}
	}
	if studentContext == nil {
		return []*privacy.Identity{account}
	}
	return []*privacy.Identity{account, studentContext}
}

func (s *TutorService) redact(text string, ids []*privacy.Identity) privacy.Result {
	res := s.Redactor.Redact(text, ids...)
	for category, n := range res.Counts {
		monitoring.PIIRedactions.WithLabelValues(string(category)).Add(float64(n))
	}
	return res
}

func (s *TutorService) complete(ctx context.Context, call, system string, messages []ChatMessage) (string, error) {
	return completeTraced(ctx, s.Completer, s.Timeout, call, system, messages)
}

// SendMessage 脱敏学生消息，带上历史对话请求模型，成功后一并保存两条消息
func (s *TutorService) SendMessage(ctx context.Context, student *model.User, sessionID uint, text string, studentContext *privacy.Identity) (*TutorReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message is required", util.ErrInvalidInput)
	}
	session, err := s.ownSession(student, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, util.ErrSessionEnded
	}

	identities := s.identitiesFor(student, studentContext)
	redacted := s.redact(text, identities)

	history, err := s.Repo.FindMessages(session.ID)
	if err != nil {
		return nil, err
	}
	messages := make([]ChatMessage, 0, len(history)+1)
	for _, m := range history {
		content := m.Content
		if m.Role == model.RoleUser {
			content = s.Redactor.RedactText(content, identities...)
		}
		messages = append(messages, ChatMessage{Role: string(m.Role), Content: content})
	}
	messages = append(messages, ChatMessage{Role: string(model.RoleUser), Content: redacted.Text})

	reply, err := s.complete(ctx, "chat", BuildTutorSystemPrompt(session.Subject, session.Topic), messages)
	if err != nil {
		s.Log.Error("Tutor response failed", zap.Uint("sessionId", session.ID), zap.Error(err))
		return nil, util.ErrTutorResponse
	}

	concepts := s.Concepts.Extract(session.Subject, reply)
	now := s.now()
	userMsg := &model.TutoringMessage{Role: model.RoleUser, Content: redacted.Text, Timestamp: now}
	assistantMsg := &model.TutoringMessage{Role: model.RoleAssistant, Content: reply, Concepts: concepts, Timestamp: now}
	if err := s.Repo.AppendMessages(session.ID, userMsg, assistantMsg); err != nil {
		return nil, err
	}

	return &TutorReply{
		SessionID:   session.ID,
		UserMessage: userMsg,
		Message:     assistantMsg,
		Concepts:    concepts,
		Redactions:  redacted.Total(),
	}, nil
}

type ChatReply struct {
	Message  string   `json:"message"`
	Concepts []string `json:"concepts"`
}

// Chat is the stateless variant: the caller supplies every prior turn and
// nothing is stored. User turns are redacted, assistant turns are passed as is.
func (s *TutorService) Chat(ctx context.Context, student *model.User, subject, topic string, turns []ChatMessage, studentContext *privacy.Identity) (*ChatReply, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: at least one message is required", util.ErrInvalidInput)
	}
	identities := s.identitiesFor(student, studentContext)
	messages := make([]ChatMessage, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case string(model.RoleUser):
			messages = append(messages, ChatMessage{Role: t.Role, Content: s.redact(t.Content, identities).Text})
		case string(model.RoleAssistant):
			messages = append(messages, t)
		default:
			return nil, fmt.Errorf("%w: unknown role %q", util.ErrInvalidInput, t.Role)
		}
	}
	if messages[len(messages)-1].Role != string(model.RoleUser) {
		return nil, fmt.Errorf("%w: last message must come from the student", util.ErrInvalidInput)
	}

	reply, err := s.complete(ctx, "chat", BuildTutorSystemPrompt(subject, topic), messages)
	if err != nil {
		s.Log.Error("Tutor response failed", zap.Uint("studentId", student.ID), zap.Error(err))
		return nil, util.ErrTutorResponse
	}
	return &ChatReply{Message: reply, Concepts: s.Concepts.Extract(subject, reply)}, nil
}

// EndSession 生成总结并关闭会话；转录归档和里程碑失败只记录日志
func (s *TutorService) EndSession(ctx context.Context, student *model.User, sessionID uint) (*model.TutoringSession, error) {
	session, err := s.ownSession(student, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, util.ErrSessionEnded
	}

	messages, err := s.Repo.FindMessages(session.ID)
	if err != nil {
		return nil, err
	}
	transcript := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		transcript = append(transcript, ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	summary := s.Summarizer.Summarize(ctx, session.Subject, session.Topic, transcript)
	if len(summary.ConceptsCovered) == 0 {
		summary.ConceptsCovered = discussedConcepts(messages)
	}

	endedAt := s.now()
	closed, err := s.Repo.CloseSession(session.ID, repository.SessionOutcome{
		EndedAt:          endedAt,
		Summary:          summary.Summary,
		PerformanceScore: summary.PerformanceScore,
		ConceptsCovered:  summary.ConceptsCovered,
		ImprovementAreas: summary.ImprovementAreas,
		StrengthAreas:    summary.StrengthAreas,
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, util.ErrSessionEnded
	}
	s.Log.Info("Tutoring session ended",
		zap.Uint("sessionId", session.ID),
		zap.Int("messages", len(messages)),
		zap.Int("performanceScore", summary.PerformanceScore))

	if s.Archive != nil {
		url, err := s.Archive.Save(ctx, &Transcript{
			SessionID: session.ID,
			StudentID: session.StudentID,
			Subject:   session.Subject,
			Topic:     session.Topic,
			StartedAt: session.StartedAt,
			EndedAt:   endedAt,
			Summary:   summary,
			Messages:  messages,
		})
		if err != nil {
			s.Log.Warn("Transcript archive failed", zap.Uint("sessionId", session.ID), zap.Error(err))
		} else if err := s.Repo.SetTranscriptURL(session.ID, url); err != nil {
			s.Log.Warn("Failed to record transcript url", zap.Uint("sessionId", session.ID), zap.Error(err))
		}
	}

	if s.Achievements != nil {
		if _, err := s.Achievements.AwardTutoringMilestones(session.StudentID); err != nil {
			s.Log.Warn("Failed to award tutoring milestones", zap.Uint("studentId", session.StudentID), zap.Error(err))
		}
	}

	return s.Repo.FindSession(repository.AllAccess(), session.ID)
}

func discussedConcepts(messages []model.TutoringMessage) []string {
	concepts := []string{}
	seen := map[string]bool{}
	for _, m := range messages {
		for _, c := range m.Concepts {
			if seen[c] || len(concepts) == maxConcepts {
				continue
			}
			seen[c] = true
			concepts = append(concepts, c)
		}
	}
	return concepts
}

func (s *TutorService) ListSessions(actor *model.User, studentID uint) ([]model.TutoringSession, error) {
	return s.Repo.FindSessions(ResolveScope(actor), studentID)
}

// ListMessages 返回 scope 内会话的全部消息
func (s *TutorService) ListMessages(actor *model.User, sessionID uint) ([]model.TutoringMessage, error) {
	session, err := s.Repo.FindSession(ResolveScope(actor), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return s.Repo.FindMessages(session.ID)
}
