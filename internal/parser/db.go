package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"rulebase-advisor/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBParser loads a rulebase snapshot and its hit counters from a
// MariaDB staging schema, for shops that sync device configs into a
// database instead of shipping CSV exports around.
//
// Expected tables:
//
//	sec_rule  (position, rule_name, action, from_zones, to_zones,
//	           sources, destinations, applications, services,
//	           source_users, url_categories, schedule, log_setting,
//	           log_start, log_end, profile_group, is_disabled,
//	           negate_source, negate_destination, location)
//	rule_hit  (rule_name, hits_total, last_hit, counter_since)
//
// List columns hold JSON string arrays; an empty array means "any".
type MariaDBParser struct {
	db *sql.DB

	Rules []model.Rule
	Hits  map[string]model.HitInfo
}

func NewMariaDBParser(dsn string) (*MariaDBParser, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &MariaDBParser{
		db:   db,
		Hits: make(map[string]model.HitInfo),
	}, nil
}

func (p *MariaDBParser) Close() {
	p.db.Close()
}

func (p *MariaDBParser) Parse() error {
	if err := p.loadRules(); err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if err := p.loadHits(); err != nil {
		return fmt.Errorf("failed to load hit counters: %w", err)
	}
	return nil
}

func (p *MariaDBParser) loadRules() error {
	rows, err := p.db.Query(`SELECT position, rule_name, action,
		from_zones, to_zones, sources, destinations, applications,
		services, source_users, url_categories,
		schedule, log_setting, log_start, log_end, profile_group,
		is_disabled, negate_source, negate_destination, location
		FROM sec_rule ORDER BY position ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule model.Rule
		var fromJSON, toJSON, srcJSON, dstJSON, appJSON, svcJSON, userJSON, urlJSON string
		var schedule, logSetting, profileGroup, location sql.NullString
		var logStart, logEnd, disabled, negSrc, negDst bool

		if err := rows.Scan(&rule.Position, &rule.Name, &rule.Action,
			&fromJSON, &toJSON, &srcJSON, &dstJSON, &appJSON,
			&svcJSON, &userJSON, &urlJSON,
			&schedule, &logSetting, &logStart, &logEnd, &profileGroup,
			&disabled, &negSrc, &negDst, &location); err != nil {
			return err
		}

		rule.Action = strings.ToLower(rule.Action)
		rule.FromZones = decodeListColumn(fromJSON)
		rule.ToZones = decodeListColumn(toJSON)
		rule.Sources = decodeListColumn(srcJSON)
		rule.Destinations = decodeListColumn(dstJSON)
		rule.Applications = decodeListColumn(appJSON)
		rule.Services = decodeListColumn(svcJSON)
		rule.SourceUsers = decodeListColumn(userJSON)
		rule.URLCategories = decodeListColumn(urlJSON)
		rule.Schedule = schedule.String
		rule.LogSetting = logSetting.String
		rule.LogStart = logStart
		rule.LogEnd = logEnd
		if profileGroup.Valid && profileGroup.String != "" {
			rule.ProfileSetting = map[string][]string{"group": {profileGroup.String}}
		}
		rule.Disabled = disabled
		rule.NegateSource = negSrc
		rule.NegateDestination = negDst
		rule.Location = location.String

		p.Rules = append(p.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sort.SliceStable(p.Rules, func(i, j int) bool {
		return p.Rules[i].Position < p.Rules[j].Position
	})
	return nil
}

func (p *MariaDBParser) loadHits() error {
	rows, err := p.db.Query("SELECT rule_name, hits_total, last_hit, counter_since FROM rule_hit")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var total uint64
		var last, since sql.NullString
		if err := rows.Scan(&name, &total, &last, &since); err != nil {
			return err
		}
		p.Hits[name] = model.HitInfo{
			Total: total,
			Last:  last.String,
			Since: since.String,
		}
	}
	return rows.Err()
}

// decodeListColumn turns a JSON string-array column into the engine's
// list shape; empty, null, or malformed values collapse to "any".
func decodeListColumn(raw string) []string {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil || len(values) == 0 {
		return []string{"any"}
	}
	return values
}
