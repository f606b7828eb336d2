// Package api is the job submission surface:
//
//	POST /transcriptions       multipart upload, answers 202 with a job id
//	GET  /transcriptions/:id   job status, and the transcript once completed
package api
