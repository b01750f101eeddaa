package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lotus/internal/domain"
)

type Repositories struct {
	User        UserRepository
	Auth        AuthRepository
	Catalog     CatalogRepository
	Appointment AppointmentRepository
	Promotion   PromotionRepository
	Wallet      WalletRepository
	Course      CourseRepository
	Review      ReviewRepository
	Payment     PaymentRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Auth:        NewAuthRepository(db),
		Catalog:     NewCatalogRepository(db),
		Appointment: NewAppointmentRepository(db),
		Promotion:   NewPromotionRepository(db),
		Wallet:      NewWalletRepository(db),
		Course:      NewCourseRepository(db),
		Review:      NewReviewRepository(db),
		Payment:     NewPaymentRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type CatalogRepository interface {
	CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error
	UpdateServicePhoto(ctx context.Context, id int64, photoURL string) error
	DeactivateService(ctx context.Context, id int64) error
	ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, error)
	CountServices(ctx context.Context, filter domain.ServiceFilter) (int, error)

	CreateCategory(ctx context.Context, name string) (int64, error)
	ListCategories(ctx context.Context) ([]domain.ServiceCategory, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment domain.Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	ListByGroup(ctx context.Context, bookingGroupID string) ([]domain.Appointment, error)
	MarkGroupPaid(ctx context.Context, bookingGroupID string) error

	// BusyTimes - времена HH:mm неотмененных записей пользователя на дату.
	BusyTimes(ctx context.Context, userID int64, date domain.CalendarDate) ([]string, error)
	// HasCompletedForService - есть ли у пользователя завершенная запись
	// по услуге (правило «только для новых клиентов» проверяется поуслужно).
	HasCompletedForService(ctx context.Context, userID, serviceID int64) (bool, error)
	// ListStartingBetween - активные записи, начинающиеся в окне; для
	// рассылки напоминаний.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
}

type PromotionRepository interface {
	Create(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	GetByCode(ctx context.Context, code string) (*domain.Promotion, error)
	Update(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error
	List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)

	// ListForUser - персональный источник: публичный каталог плюс уже
	// обмененные пользователем приватные ваучеры.
	ListForUser(ctx context.Context, userID int64) ([]domain.Promotion, error)
	ListRedeemedByUser(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error)
	// Redeem атомарно списывает баллы, уменьшает тираж и увеличивает
	// redeemed_count пользователя.
	Redeem(ctx context.Context, userID, promotionID int64, pointsRequired int) error
}

type WalletRepository interface {
	Get(ctx context.Context, userID int64) (*domain.Wallet, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error)
	ListTiers(ctx context.Context) ([]domain.Tier, error)
	// Accrue добавляет баллы и расход одной транзакцией с записью истории.
	Accrue(ctx context.Context, userID int64, points int, spent float64) error
}

type CourseRepository interface {
	Create(ctx context.Context, dto domain.CreateCourseDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.TreatmentCourse, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.TreatmentCourse, error)
	UpdateSession(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error
}

type ReviewRepository interface {
	Create(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error)
	ExistsForAppointment(ctx context.Context, appointmentID int64) (bool, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
	AverageRating(ctx context.Context, serviceID int64) (float64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	SetCheckoutSession(ctx context.Context, id int64, sessionID string) error
}
