package handler

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/akselna/utveksle.no-sub001/internal/dto"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义标签，启动时调用一次
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	return dto.RegisterValidators(v)
}
