package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type RedisClient struct {
	mock.Mock
}

func (c *RedisClient) Del(arg1 context.Context, arg2 ...string) error {
	return c.Called(arg1, arg2).Error(0)
}

func (c *RedisClient) SetObj(arg1 context.Context, arg2 string, arg3 any, arg4 time.Duration) error {
	return c.Called(arg1, arg2, arg3, arg4).Error(0)
}

func (c *RedisClient) GetObj(arg1 context.Context, arg2 string, arg3 any) error {
	return c.Called(arg1, arg2, arg3).Error(0)
}

func (c *RedisClient) GetDelObj(arg1 context.Context, arg2 string, arg3 any) error {
	return c.Called(arg1, arg2, arg3).Error(0)
}
