package processor

import "errors"

var (
	// ErrNoJob 该HR名下还没有任何岗位
	ErrNoJob = errors.New("当前没有可用岗位")
	// ErrJobNotFound 指定的岗位不存在或不属于该HR
	ErrJobNotFound = errors.New("岗位不存在或无权访问")
)
