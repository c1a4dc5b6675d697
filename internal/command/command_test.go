package command

import (
	"context"
	"sync"
	"time"

	"github.com/krbank/backoffice/internal/cqrs"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
	"github.com/krbank/backoffice/internal/models"
	"github.com/krbank/backoffice/internal/repository"
	"github.com/krbank/backoffice/internal/utils"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type recordedEvent struct {
	stream    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{stream: stream, eventType: eventType, data: data})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

// commandSuite wires all three command services over one in-memory store
// with a clock that advances one second per call.
type commandSuite struct {
	suite.Suite
	ctx       context.Context
	store     *repository.MemoryStore
	publisher *recordingPublisher
	clock     time.Time

	employees *EmployeeCommandService
	customers *CustomerCommandService
	accounts  *AccountCommandService
}

func (s *commandSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.publisher = &recordingPublisher{}
	s.clock = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	opts := []Option{WithPublisher(s.publisher), WithClock(s.tick)}
	s.employees = NewEmployeeCommandService(s.store, utils.NewBcryptHasher(bcrypt.MinCost), opts...)
	s.customers = NewCustomerCommandService(s.store, opts...)
	s.accounts = NewAccountCommandService(s.store, opts...)
}

func (s *commandSuite) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *commandSuite) createEmployee(username string) *models.EmployeeView {
	view, err := s.employees.CreateEmployee(s.ctx, cqrs.CreateEmployeeCommand{
		Username:  username,
		Password:  "password123",
		FirstName: "Emp",
		LastName:  username,
		Email:     username + "@bank.local",
		Role:      models.RoleEmployee,
	})
	s.Require().NoError(err)
	return view
}

func customerData(first, last, email, ssn string) cqrs.CustomerData {
	return cqrs.CustomerData{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		PhoneNumber: "+15551234567",
		Address:     "1 Main St",
		SSN:         ssn,
	}
}

func (s *commandSuite) createCustomer(employeeID, email, ssn string) *models.CustomerView {
	view, err := s.customers.CreateCustomer(s.ctx, cqrs.CreateCustomerCommand{
		CustomerData: customerData("John", "Doe", email, ssn),
		EmployeeID:   employeeID,
	})
	s.Require().NoError(err)
	return view
}

func (s *commandSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}
