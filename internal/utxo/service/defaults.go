package service

const (
	defaultWorkerCount = 8
)
