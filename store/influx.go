package store

import (
	"context"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mlfelice/spruce-tools/aggregate"
)

// Influx stores pipeline outputs in InfluxDB. Rows and groups without data
// produce no points; in a measurement series, absence is not a value.
type Influx struct {
	serverURL string
	token     string
	org       string
	bucket    string
}

func NewInflux(serverURL, token, org, bucket string) *Influx {
	return &Influx{serverURL: serverURL, token: token, org: org, bucket: bucket}
}

// rowPoints converts interval averages to InfluxDB points, skipping rows
// whose average is absent.
func rowPoints(rows []aggregate.Row) []*write.Point {
	points := make([]*write.Point, 0, len(rows))
	for _, row := range rows {
		if row.Mean == nil {
			continue
		}
		p := influxdb2.NewPointWithMeasurement("soil_temp").
			AddTag("plot", strconv.Itoa(row.Plot)).
			AddTag("upper_depth", strconv.Itoa(row.Interval.Top)).
			AddTag("lower_depth", strconv.Itoa(row.Interval.Bottom)).
			AddField("avg_temp", *row.Mean).
			SetTime(row.Timestamp)
		points = append(points, p)
	}
	return points
}

// summaryPoints converts summary groups to InfluxDB points, skipping groups
// with no data.
func summaryPoints(summaries []aggregate.Summary) []*write.Point {
	points := make([]*write.Point, 0, len(summaries))
	for _, s := range summaries {
		if s.Stats == nil {
			continue
		}
		p := influxdb2.NewPointWithMeasurement("soil_temp_summary").
			AddTag("plot", strconv.Itoa(s.Key.Plot)).
			AddTag("upper_depth", strconv.Itoa(s.Key.Interval.Top)).
			AddTag("lower_depth", strconv.Itoa(s.Key.Interval.Bottom)).
			AddField("count", s.Stats.Count).
			AddField("min", s.Stats.Min).
			AddField("max", s.Stats.Max).
			AddField("mean", s.Stats.Mean).
			AddField("stdev", s.Stats.StdDev).
			SetTime(s.Key.Target)
		points = append(points, p)
	}
	return points
}

func (db *Influx) SaveRows(ctx context.Context, rows []aggregate.Row) error {
	return db.write(ctx, rowPoints(rows))
}

func (db *Influx) SaveSummaries(ctx context.Context, summaries []aggregate.Summary) error {
	return db.write(ctx, summaryPoints(summaries))
}

func (db *Influx) write(ctx context.Context, points []*write.Point) error {
	if len(points) == 0 {
		return nil
	}

	client := influxdb2.NewClient(db.serverURL, db.token)
	defer client.Close()

	return client.WriteAPIBlocking(db.org, db.bucket).WritePoint(ctx, points...)
}

func (db *Influx) Close(ctx context.Context) error {
	return nil
}
