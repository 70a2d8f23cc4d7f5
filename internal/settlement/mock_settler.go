package settlement

import (
	"context"

	"github.com/eigerco/fury/internal/raffle"
	"github.com/stretchr/testify/mock"
)

func NewSettlerMock() *SettlerMock {
	return &SettlerMock{}
}

type SettlerMock struct {
	mock.Mock
}

func (s *SettlerMock) Transfer(ctx context.Context, instr raffle.TransferInstruction) error {
	args := s.MethodCalled("Transfer", ctx, instr)
	return args.Error(0)
}
