package foodRepository

const (
	queryCreateScan = `
		INSERT INTO food_scans (
			id,
			image_url,
			detected_foods,
			confidence_score,
			total_calories,
			total_protein,
			total_carbs,
			total_fats,
			total_fiber,
			total_sugar,
			total_sodium,
			health_score,
			dietary_tags,
			diet_class,
			ai_insights,
			analysis_time,
			backend,
			created_at
		) VALUES (
			:id,
			:image_url,
			:detected_foods,
			:confidence_score,
			:total_calories,
			:total_protein,
			:total_carbs,
			:total_fats,
			:total_fiber,
			:total_sugar,
			:total_sodium,
			:health_score,
			:dietary_tags,
			:diet_class,
			:ai_insights,
			:analysis_time,
			:backend,
			:created_at
		)
	`

	queryGetScanByID = `
		SELECT
			id,
			image_url,
			detected_foods,
			confidence_score,
			total_calories,
			total_protein,
			total_carbs,
			total_fats,
			total_fiber,
			total_sugar,
			total_sodium,
			health_score,
			dietary_tags,
			diet_class,
			ai_insights,
			analysis_time,
			backend,
			created_at
		FROM food_scans
		WHERE id = :id
	`

	queryGetScans = `
		SELECT
			id,
			image_url,
			detected_foods,
			total_calories,
			created_at
		FROM food_scans
		ORDER BY created_at DESC, id DESC
		LIMIT :limit
	`

	queryScanExists = `
		SELECT COUNT(1) FROM food_scans WHERE id = :id
	`

	queryCreateFeedback = `
		INSERT INTO scan_feedback (
			id,
			scan_id,
			is_accurate,
			correct_food_name,
			comments,
			created_at
		) VALUES (
			:id,
			:scan_id,
			:is_accurate,
			:correct_food_name,
			:comments,
			:created_at
		)
	`
)
