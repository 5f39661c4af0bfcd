package domain

// Extracts are the four tabular views derived from one user overview
// document. Issues collects per-column coercion failures; they are
// diagnostics, not errors.
type Extracts struct {
	PersonalRecords Table
	Streaks         Table
	Achievements    Table
	WorkoutCounts   Table
	Issues          []CoercionIssue
}

var personalRecordSpecs = []ColumnSpec{
	{Name: "slug", Type: TypeInt},
	{Name: "value", Type: TypeInt},
	{Name: "raw_value", Type: TypeFloat},
	{Name: "workout_date", Type: TypeDate},
}

var streakSpecs = []ColumnSpec{
	{Name: "start_date_of_current_weekly", Type: TypeUnixDate},
	{Name: "start_date_of_current_daily", Type: TypeUnixDate},
}

// CleanUserOverview shapes a raw overview document into the four extracts.
// Any required key missing anywhere in the document voids all four: the
// caller gets zero-value (empty) tables and a *MissingKeyError naming the
// failing path. This all-or-nothing fallback is deliberate; see DESIGN.md.
func CleanUserOverview(doc Document) (Extracts, error) {
	personalRecords, prIssues, err := cleanPersonalRecords(doc)
	if err != nil {
		return Extracts{}, err
	}

	streaks, streakIssues, err := cleanStreaks(doc)
	if err != nil {
		return Extracts{}, err
	}

	achievements, err := cleanAchievements(doc)
	if err != nil {
		return Extracts{}, err
	}

	workoutCounts, err := cleanWorkoutCounts(doc)
	if err != nil {
		return Extracts{}, err
	}

	return Extracts{
		PersonalRecords: personalRecords,
		Streaks:         streaks,
		Achievements:    achievements,
		WorkoutCounts:   workoutCounts,
		Issues:          append(prIssues, streakIssues...),
	}, nil
}

func cleanPersonalRecords(doc Document) (Table, []CoercionIssue, error) {
	groups, err := lookupList(doc, "personal_records", "personal_records")
	if err != nil {
		return Table{}, nil, err
	}
	if len(groups) == 0 {
		return Table{}, nil, &MissingKeyError{Path: "personal_records[0]"}
	}

	first, ok := groups[0].(map[string]any)
	if !ok {
		return Table{}, nil, &MissingKeyError{Path: "personal_records[0]"}
	}

	items, err := lookupList(first, "records", "personal_records[0].records")
	if err != nil {
		return Table{}, nil, err
	}

	records, err := objectRecords(items, "personal_records[0].records")
	if err != nil {
		return Table{}, nil, err
	}

	table, issues, err := CoerceColumns(TableFromRecords(records), personalRecordSpecs)
	if err != nil {
		return Table{}, nil, err
	}

	return SortRowsBy(table, "slug"), issues, nil
}

func cleanStreaks(doc Document) (Table, []CoercionIssue, error) {
	streaks, err := lookupObject(doc, "streaks", "streaks")
	if err != nil {
		return Table{}, nil, err
	}

	// The API returns a single streaks object; wrap it into a one-row table.
	table, issues, err := CoerceColumns(TableFromRecords([]map[string]any{streaks}), streakSpecs)
	if err != nil {
		return Table{}, nil, err
	}

	return table, issues, nil
}

func cleanAchievements(doc Document) (Table, error) {
	counts, err := lookupObject(doc, "achievement_counts", "achievement_counts")
	if err != nil {
		return Table{}, err
	}

	items, err := lookupList(counts, "achievements", "achievement_counts.achievements")
	if err != nil {
		return Table{}, err
	}

	records, err := objectRecords(items, "achievement_counts.achievements")
	if err != nil {
		return Table{}, err
	}

	flattened := make([]map[string]any, 0, len(records))
	sawTemplate := false
	for _, record := range records {
		flat := make(map[string]any, len(record))
		for key, value := range record {
			if key == "template" {
				continue
			}
			flat[key] = value
		}
		if template, ok := record["template"].(map[string]any); ok {
			sawTemplate = true
			for key, value := range template {
				flat[key] = value
			}
		}
		flattened = append(flattened, flat)
	}
	if len(records) > 0 && !sawTemplate {
		return Table{}, &MissingKeyError{Path: "achievement_counts.achievements[].template"}
	}

	return TableFromRecords(flattened), nil
}

func cleanWorkoutCounts(doc Document) (Table, error) {
	counts, err := lookupObject(doc, "workout_counts", "workout_counts")
	if err != nil {
		return Table{}, err
	}

	items, err := lookupList(counts, "workouts", "workout_counts.workouts")
	if err != nil {
		return Table{}, err
	}

	records, err := objectRecords(items, "workout_counts.workouts")
	if err != nil {
		return Table{}, err
	}

	return TableFromRecords(records), nil
}

func lookupObject(m map[string]any, key, path string) (map[string]any, error) {
	value, ok := m[key]
	if !ok {
		return nil, &MissingKeyError{Path: path}
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, &MissingKeyError{Path: path}
	}
	return object, nil
}

func lookupList(m map[string]any, key, path string) ([]any, error) {
	value, ok := m[key]
	if !ok {
		return nil, &MissingKeyError{Path: path}
	}
	list, ok := value.([]any)
	if !ok {
		return nil, &MissingKeyError{Path: path}
	}
	return list, nil
}

func objectRecords(items []any, path string) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, &MissingKeyError{Path: path}
		}
		records = append(records, record)
	}
	return records, nil
}
