package service

import (
	"context"
	"errors"
	"time"

	"lotus/internal/domain"
	"lotus/internal/events"
)

var errStubNotSet = errors.New("метод заглушки не задан")

type publishedEvent struct {
	userID  int64
	topic   events.Topic
	payload interface{}
}

type publisherStub struct {
	published  []publishedEvent
	broadcasts []publishedEvent
}

func (p *publisherStub) Publish(userID int64, topic events.Topic, payload interface{}) {
	p.published = append(p.published, publishedEvent{userID: userID, topic: topic, payload: payload})
}

func (p *publisherStub) Broadcast(topic events.Topic, payload interface{}) {
	p.broadcasts = append(p.broadcasts, publishedEvent{topic: topic, payload: payload})
}

func (p *publisherStub) topics() []events.Topic {
	topics := make([]events.Topic, 0, len(p.published))
	for _, e := range p.published {
		topics = append(topics, e.topic)
	}
	return topics
}

type appointmentRepoStub struct {
	createFn              func(ctx context.Context, appointment domain.Appointment) (int64, error)
	getByIDFn             func(ctx context.Context, id int64) (*domain.Appointment, error)
	updateStatusFn        func(ctx context.Context, id int64, status domain.AppointmentStatus) error
	listFn                func(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	countByFilterFn       func(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	listByGroupFn         func(ctx context.Context, bookingGroupID string) ([]domain.Appointment, error)
	markGroupPaidFn       func(ctx context.Context, bookingGroupID string) error
	busyTimesFn           func(ctx context.Context, userID int64, date domain.CalendarDate) ([]string, error)
	hasCompletedFn        func(ctx context.Context, userID, serviceID int64) (bool, error)
	listStartingBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
}

func (s *appointmentRepoStub) Create(ctx context.Context, appointment domain.Appointment) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, appointment)
}

func (s *appointmentRepoStub) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getByIDFn(ctx, id)
}

func (s *appointmentRepoStub) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, id, status)
}

func (s *appointmentRepoStub) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s *appointmentRepoStub) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	if s.countByFilterFn == nil {
		return 0, nil
	}
	return s.countByFilterFn(ctx, filter)
}

func (s *appointmentRepoStub) ListByGroup(ctx context.Context, bookingGroupID string) ([]domain.Appointment, error) {
	if s.listByGroupFn == nil {
		return nil, nil
	}
	return s.listByGroupFn(ctx, bookingGroupID)
}

func (s *appointmentRepoStub) MarkGroupPaid(ctx context.Context, bookingGroupID string) error {
	if s.markGroupPaidFn == nil {
		return nil
	}
	return s.markGroupPaidFn(ctx, bookingGroupID)
}

func (s *appointmentRepoStub) BusyTimes(ctx context.Context, userID int64, date domain.CalendarDate) ([]string, error) {
	if s.busyTimesFn == nil {
		return nil, nil
	}
	return s.busyTimesFn(ctx, userID, date)
}

func (s *appointmentRepoStub) HasCompletedForService(ctx context.Context, userID, serviceID int64) (bool, error) {
	if s.hasCompletedFn == nil {
		return false, nil
	}
	return s.hasCompletedFn(ctx, userID, serviceID)
}

func (s *appointmentRepoStub) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	if s.listStartingBetweenFn == nil {
		return nil, nil
	}
	return s.listStartingBetweenFn(ctx, from, to)
}

type catalogRepoStub struct {
	getServiceByIDFn func(ctx context.Context, id int64) (*domain.Service, error)
}

func (s *catalogRepoStub) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	return 0, errStubNotSet
}

func (s *catalogRepoStub) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	if s.getServiceByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getServiceByIDFn(ctx, id)
}

func (s *catalogRepoStub) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	return nil
}

func (s *catalogRepoStub) UpdateServicePhoto(ctx context.Context, id int64, photoURL string) error {
	return nil
}

func (s *catalogRepoStub) DeactivateService(ctx context.Context, id int64) error {
	return nil
}

func (s *catalogRepoStub) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error) {
	return nil, nil
}

func (s *catalogRepoStub) CountServices(ctx context.Context, filter domain.ServiceFilter) (int, error) {
	return 0, nil
}

func (s *catalogRepoStub) CreateCategory(ctx context.Context, name string) (int64, error) {
	return 0, errStubNotSet
}

func (s *catalogRepoStub) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	return nil, nil
}

type promotionRepoStub struct {
	createFn         func(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error)
	getByIDFn        func(ctx context.Context, id int64) (*domain.Promotion, error)
	getByCodeFn      func(ctx context.Context, code string) (*domain.Promotion, error)
	updateFn         func(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error
	listFn           func(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)
	listForUserFn    func(ctx context.Context, userID int64) ([]domain.Promotion, error)
	listRedeemedFn   func(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error)
	redeemFn         func(ctx context.Context, userID, promotionID int64, pointsRequired int) error
}

func (s *promotionRepoStub) Create(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, dto)
}

func (s *promotionRepoStub) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getByIDFn(ctx, id)
}

func (s *promotionRepoStub) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	if s.getByCodeFn == nil {
		return nil, errStubNotSet
	}
	return s.getByCodeFn(ctx, code)
}

func (s *promotionRepoStub) Update(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, id, dto)
}

func (s *promotionRepoStub) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s *promotionRepoStub) ListForUser(ctx context.Context, userID int64) ([]domain.Promotion, error) {
	if s.listForUserFn == nil {
		return nil, nil
	}
	return s.listForUserFn(ctx, userID)
}

func (s *promotionRepoStub) ListRedeemedByUser(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error) {
	if s.listRedeemedFn == nil {
		return nil, nil
	}
	return s.listRedeemedFn(ctx, userID)
}

func (s *promotionRepoStub) Redeem(ctx context.Context, userID, promotionID int64, pointsRequired int) error {
	if s.redeemFn == nil {
		return errStubNotSet
	}
	return s.redeemFn(ctx, userID, promotionID, pointsRequired)
}

type userRepoStub struct {
	createFn     func(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	getByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByPhoneFn func(ctx context.Context, phone string) (*domain.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user domain.CreateUserDTO) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, user)
}

func (s *userRepoStub) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.getByEmailFn == nil {
		return nil, errStubNotSet
	}
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if s.getByPhoneFn == nil {
		return nil, errStubNotSet
	}
	return s.getByPhoneFn(ctx, phone)
}

func (s *userRepoStub) Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error {
	return nil
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return nil, nil
}

type authRepoStub struct {
	createSessionFn func(ctx context.Context, session domain.Session) error
	getSessionFn    func(ctx context.Context, refreshToken string) (*domain.Session, error)
	deleteSessionFn func(ctx context.Context, id string) error
}

func (s *authRepoStub) CreateSession(ctx context.Context, session domain.Session) error {
	if s.createSessionFn == nil {
		return nil
	}
	return s.createSessionFn(ctx, session)
}

func (s *authRepoStub) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if s.getSessionFn == nil {
		return nil, errStubNotSet
	}
	return s.getSessionFn(ctx, refreshToken)
}

func (s *authRepoStub) DeleteSession(ctx context.Context, id string) error {
	if s.deleteSessionFn == nil {
		return nil
	}
	return s.deleteSessionFn(ctx, id)
}

func (s *authRepoStub) DeleteSessionsByUserID(ctx context.Context, userID int64) error {
	return nil
}

type walletRepoStub struct {
	getFn       func(ctx context.Context, userID int64) (*domain.Wallet, error)
	historyFn   func(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error)
	listTiersFn func(ctx context.Context) ([]domain.Tier, error)
	accrueFn    func(ctx context.Context, userID int64, points int, spent float64) error
}

func (s *walletRepoStub) Get(ctx context.Context, userID int64) (*domain.Wallet, error) {
	if s.getFn == nil {
		return nil, errStubNotSet
	}
	return s.getFn(ctx, userID)
}

func (s *walletRepoStub) History(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID, limit, offset)
}

func (s *walletRepoStub) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	if s.listTiersFn == nil {
		return nil, nil
	}
	return s.listTiersFn(ctx)
}

func (s *walletRepoStub) Accrue(ctx context.Context, userID int64, points int, spent float64) error {
	if s.accrueFn == nil {
		return errStubNotSet
	}
	return s.accrueFn(ctx, userID, points, spent)
}

type courseRepoStub struct {
	createFn        func(ctx context.Context, dto domain.CreateCourseDTO) (int64, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.TreatmentCourse, error)
	listByClientFn  func(ctx context.Context, clientID int64) ([]domain.TreatmentCourse, error)
	updateSessionFn func(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error
}

func (s *courseRepoStub) Create(ctx context.Context, dto domain.CreateCourseDTO) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, dto)
}

func (s *courseRepoStub) GetByID(ctx context.Context, id int64) (*domain.TreatmentCourse, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getByIDFn(ctx, id)
}

func (s *courseRepoStub) ListByClient(ctx context.Context, clientID int64) ([]domain.TreatmentCourse, error) {
	if s.listByClientFn == nil {
		return nil, nil
	}
	return s.listByClientFn(ctx, clientID)
}

func (s *courseRepoStub) UpdateSession(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error {
	if s.updateSessionFn == nil {
		return nil
	}
	return s.updateSessionFn(ctx, courseID, sessionNumber, dto)
}

type paymentRepoStub struct {
	createFn             func(ctx context.Context, payment domain.Payment) (int64, error)
	getByIDFn            func(ctx context.Context, id int64) (*domain.Payment, error)
	getByCheckoutFn      func(ctx context.Context, sessionID string) (*domain.Payment, error)
	updateStatusFn       func(ctx context.Context, id int64, status domain.PaymentStatus) error
	setCheckoutSessionFn func(ctx context.Context, id int64, sessionID string) error
}

func (s *paymentRepoStub) Create(ctx context.Context, payment domain.Payment) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, payment)
}

func (s *paymentRepoStub) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if s.getByIDFn == nil {
		return nil, errStubNotSet
	}
	return s.getByIDFn(ctx, id)
}

func (s *paymentRepoStub) GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	if s.getByCheckoutFn == nil {
		return nil, errStubNotSet
	}
	return s.getByCheckoutFn(ctx, sessionID)
}

func (s *paymentRepoStub) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	if s.updateStatusFn == nil {
		return nil
	}
	return s.updateStatusFn(ctx, id, status)
}

func (s *paymentRepoStub) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	if s.setCheckoutSessionFn == nil {
		return nil
	}
	return s.setCheckoutSessionFn(ctx, id, sessionID)
}

type reviewRepoStub struct {
	createFn func(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error)
	existsFn func(ctx context.Context, appointmentID int64) (bool, error)
	listFn   func(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
}

func (s *reviewRepoStub) Create(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error) {
	if s.createFn == nil {
		return 0, errStubNotSet
	}
	return s.createFn(ctx, userID, dto)
}

func (s *reviewRepoStub) ExistsForAppointment(ctx context.Context, appointmentID int64) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, appointmentID)
}

func (s *reviewRepoStub) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s *reviewRepoStub) AverageRating(ctx context.Context, serviceID int64) (float64, error) {
	return 0, nil
}
