// Package catalog holds the starter courses installed by `coursectl seed`.
package catalog

import "lessonhub/internal/domain"

const pdfBase = "https://bondipathshala.com.bd/pdf/"

// Default returns a fresh copy of the starter catalog in display order.
func Default() []domain.Course {
	courses := []domain.Course{
		{
			Slug:        "introduction-to-react",
			Title:       "Introduction to React",
			Description: "Learn the fundamentals of React, the most popular JavaScript library for building user interfaces.",
			Thumbnail:   "https://i.ytimg.com/vi/SqcY0GlETPk/hqdefault.jpg",
			Lessons: []domain.Lesson{
				{ID: "1-1", Title: "What is React?", Duration: "10:32", VideoID: "SqcY0GlETPk", PDFURL: pdfBase + "react-lesson-1"},
				{ID: "1-2", Title: "Setting Up Your Environment", Duration: "15:10", VideoID: "9S6M2i_S8s", PDFURL: pdfBase + "react-lesson-2"},
				{ID: "1-3", Title: "Components and Props", Duration: "25:45", VideoID: "Y22c_3a_M_s", PDFURL: pdfBase + "react-lesson-3"},
				{ID: "1-4", Title: "State and Lifecycle", Duration: "30:18", VideoID: "O6P86uwfdR0", PDFURL: pdfBase + "react-lesson-4"},
			},
		},
		{
			Slug:        "advanced-tailwind-css",
			Title:       "Advanced Tailwind CSS",
			Description: "Go beyond the basics and learn advanced techniques for building beautiful, custom designs with Tailwind CSS.",
			Thumbnail:   "https://i.ytimg.com/vi/lCxcTsOHrjo/hqdefault.jpg",
			Lessons: []domain.Lesson{
				{ID: "2-1", Title: "Configuration Deep Dive", Duration: "22:05", VideoID: "lCxcTsOHrjo", PDFURL: pdfBase + "tailwind-lesson-1"},
				{ID: "2-2", Title: "JIT Compiler Explained", Duration: "18:30", VideoID: "3xlK23tAnV4", PDFURL: pdfBase + "tailwind-lesson-2"},
				{ID: "2-3", Title: "Plugins and Presets", Duration: "28:15", VideoID: "BaxXa2oYf2Y", PDFURL: pdfBase + "tailwind-lesson-3"},
				{ID: "2-4", Title: "Responsive Design Patterns", Duration: "24:50", VideoID: "Qp2sE2_Uu_s", PDFURL: pdfBase + "tailwind-lesson-4"},
			},
		},
		{
			Slug:        "nextjs-for-beginners",
			Title:       "Next.js for Beginners",
			Description: "Build powerful, server-rendered React applications with Next.js. Perfect for beginners looking to level up.",
			Thumbnail:   "https://i.ytimg.com/vi/1_6nK_How_c/hqdefault.jpg",
			Lessons: []domain.Lesson{
				{ID: "3-1", Title: "Why Next.js?", Duration: "12:40", VideoID: "1_6nK_How_c", PDFURL: pdfBase + "nextjs-lesson-1"},
				{ID: "3-2", Title: "Pages and Routing", Duration: "20:11", VideoID: "h7a_s19-p4s", PDFURL: pdfBase + "nextjs-lesson-2"},
				{ID: "3-3", Title: "Data Fetching", Duration: "35:00", VideoID: "HplxluE_S8w", PDFURL: pdfBase + "nextjs-lesson-3"},
				{ID: "3-4", Title: "API Routes", Duration: "19:55", VideoID: "s_25s2r3s_Y", PDFURL: pdfBase + "nextjs-lesson-4"},
			},
		},
		{
			Slug:        "mastering-typescript",
			Title:       "Mastering TypeScript",
			Description: "Add static typing to JavaScript to improve developer productivity and code quality.",
			Thumbnail:   "https://i.ytimg.com/vi/zQnBQ4tB3ZA/hqdefault.jpg",
			Lessons: []domain.Lesson{
				{ID: "4-1", Title: "Introduction to Types", Duration: "21:14", VideoID: "zQnBQ4tB3ZA", PDFURL: pdfBase + "ts-lesson-1"},
				{ID: "4-2", Title: "Interfaces and Generics", Duration: "28:40", VideoID: "d56mG7DezGs", PDFURL: pdfBase + "ts-lesson-2"},
				{ID: "4-3", Title: "Advanced Types", Duration: "32:22", VideoID: "fN22fcn2zP0", PDFURL: pdfBase + "ts-lesson-3"},
			},
		},
		{
			Slug:        "your-custom-course",
			Title:       "Your Custom Course",
			Description: "Add your own courses from the admin area. You just need a title, description, and a list of YouTube video IDs.",
			Thumbnail:   "https://placehold.co/160x90/60A5FA/FFFFFF.png",
			Lessons: []domain.Lesson{
				{ID: "5-1", Title: "Your First Lesson", Duration: "05:00", VideoID: "dQw4w9WgXcQ", PDFURL: pdfBase + "custom-1"},
				{ID: "5-2", Title: "Your Second Lesson", Duration: "10:00", VideoID: "dQw4w9WgXcQ", PDFURL: pdfBase + "custom-2"},
			},
		},
	}
	for i := range courses {
		courses[i].Order = i
	}
	return courses
}
