package analytics

import (
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// RevenueSeries buckets order totals by granularity across r and fills
// empty buckets with zero points so charts stay continuous.
func RevenueSeries(orders []entity.Order, r entity.TimeRange, g entity.MetricsGranularity) []entity.TimeSeriesPoint {
	loc := r.From.Location()
	byBucket := make(map[int64]entity.TimeSeriesPoint)
	for _, o := range orders {
		b := bucketStart(o.CreatedAt.In(loc), g)
		p := byBucket[b.Unix()]
		p.Date = b
		p.Value += o.Total
		p.Count++
		byBucket[b.Unix()] = p
	}
	return fillTimeSeriesGaps(byBucket, r.From, r.To, g)
}

func fillTimeSeriesGaps(points map[int64]entity.TimeSeriesPoint, from, to time.Time, g entity.MetricsGranularity) []entity.TimeSeriesPoint {
	var result []entity.TimeSeriesPoint
	cur := bucketStart(from, g)
	end := bucketStart(to.In(from.Location()), g)
	for !cur.After(end) {
		if p, ok := points[cur.Unix()]; ok {
			result = append(result, p)
		} else {
			result = append(result, entity.TimeSeriesPoint{Date: cur})
		}
		cur = bucketNext(cur, g)
	}
	return result
}

func bucketStart(t time.Time, g entity.MetricsGranularity) time.Time {
	switch g {
	case entity.MetricsGranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case entity.MetricsGranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return startOfDay(t)
	}
}

func bucketNext(t time.Time, g entity.MetricsGranularity) time.Time {
	switch g {
	case entity.MetricsGranularityHour:
		return t.Add(time.Hour)
	case entity.MetricsGranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func inRange(t time.Time, r entity.TimeRange) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
