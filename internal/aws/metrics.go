package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
)

// Metric names published per search.
const (
	MetricSearchRequests  = "SearchRequests"
	MetricUpstreamLatency = "UpstreamLatency"
	DimensionOutcome      = "Outcome"
)

// MetricsPublisher wraps a CloudWatch client and a namespace.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetricsPublisher returns a MetricsPublisher bound to a namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CloudWatch: cw,
		Namespace:  namespace,
	}
}

// RecordSearch publishes one search outcome count and, when the upstream was
// called, its latency in milliseconds.
func (p *MetricsPublisher) RecordSearch(ctx context.Context, outcome string, upstreamLatency time.Duration) error {
	dims := []cwtypes.Dimension{{Name: sdkaws.String(DimensionOutcome), Value: sdkaws.String(outcome)}}
	now := time.Now()

	data := []cwtypes.MetricDatum{{
		MetricName: sdkaws.String(MetricSearchRequests),
		Dimensions: dims,
		Timestamp:  &now,
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
	}}
	if upstreamLatency > 0 {
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String(MetricUpstreamLatency),
			Dimensions: dims,
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitMilliseconds,
			Value:      sdkaws.Float64(float64(upstreamLatency.Microseconds()) / 1000.0),
		})
	}

	_, err := p.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(p.Namespace),
		MetricData: data,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("put metric data (%s): %w", apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
